package entity

import "time"

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Movement es un evento inmutable del libro (append-only). Quantity siempre es positiva;
// la dirección la da Type.
type Movement struct {
	ID        string
	OrderID   string // vacío si no proviene de un pedido
	ItemKey   string
	Quantity  int64
	Type      string
	Timestamp time.Time
}

// Signed devuelve la cantidad con signo: positiva para IN, negativa para OUT.
func (m Movement) Signed() int64 {
	switch m.Type {
	case MovementTypeIN:
		return m.Quantity
	case MovementTypeOUT:
		return -m.Quantity
	}
	return 0
}

// ValidMovementType indica si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}
