package entity

// Stock cantidad actual derivada del libro para una referencia (puede ser negativa).
type Stock struct {
	ItemKey  string
	Name     string
	Quantity int64
}
