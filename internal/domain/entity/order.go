package entity

import "time"

// OrderLine línea de un pedido: referencia y cantidad (> 0).
type OrderLine struct {
	ItemKey  string
	Quantity int64
}

// Order pedido de una mesa/ubicación a cargo de un encargado. Inmutable tras crearse;
// cada línea genera exactamente una salida (OUT) en el libro.
type Order struct {
	ID          string
	LocationKey string
	OwnerKey    string
	PlacedAt    time.Time
	Lines       []OrderLine
}

// Clone copia el pedido incluyendo sus líneas.
func (o Order) Clone() Order {
	o.Lines = append([]OrderLine(nil), o.Lines...)
	return o
}
