package dto

import (
	"time"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// MovementRequest body para POST /api/movements.
type MovementRequest struct {
	ItemKey  string `json:"item_key"`
	Quantity int64  `json:"quantity"`
	Type     string `json:"type"` // IN | OUT
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id,omitempty"`
	ItemKey   string    `json:"item_key"`
	Quantity  int64     `json:"quantity"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// StockResponse cantidad derivada de una referencia (puede ser negativa).
type StockResponse struct {
	ItemKey  string `json:"item_key"`
	Name     string `json:"name,omitempty"`
	Quantity int64  `json:"quantity"`
}

// OrderLineDTO línea de pedido. Name solo viaja en respuestas (nombre del catálogo).
type OrderLineDTO struct {
	ItemKey  string `json:"item_key"`
	Name     string `json:"name,omitempty"`
	Quantity int64  `json:"quantity"`
}

// OrderRequest body para POST /api/orders.
type OrderRequest struct {
	LocationKey string         `json:"location_key"`
	OwnerKey    string         `json:"owner_key"`
	Lines       []OrderLineDTO `json:"lines"`
}

// OrderResponse pedido registrado.
type OrderResponse struct {
	ID          string         `json:"id"`
	LocationKey string         `json:"location_key"`
	OwnerKey    string         `json:"owner_key"`
	PlacedAt    time.Time      `json:"placed_at"`
	Lines       []OrderLineDTO `json:"lines"`
}

// AttendanceRequest body para PUT /api/attendance/:date.
type AttendanceRequest struct {
	Presence map[string]bool `json:"presence"`
}

// AttendanceRowResponse fila del historial de asistencia.
type AttendanceRowResponse struct {
	Date       string `json:"date"`
	StudentKey string `json:"student_key"`
	Present    bool   `json:"present"`
}

// FromMovement convierte un movimiento a su respuesta.
func FromMovement(m entity.Movement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ItemKey:   m.ItemKey,
		Quantity:  m.Quantity,
		Type:      m.Type,
		Timestamp: m.Timestamp,
	}
}

// FromMovements convierte una lista de movimientos.
func FromMovements(list []entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// FromStock convierte la vista de inventario.
func FromStock(list []entity.Stock) []StockResponse {
	out := make([]StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, StockResponse{ItemKey: s.ItemKey, Name: s.Name, Quantity: s.Quantity})
	}
	return out
}

// ToOrderLines convierte las líneas del body a entidades.
func (r OrderRequest) ToOrderLines() []entity.OrderLine {
	lines := make([]entity.OrderLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, entity.OrderLine{ItemKey: l.ItemKey, Quantity: l.Quantity})
	}
	return lines
}

// FromOrder convierte un pedido; names resuelve el nombre de cada referencia (puede ser nil).
func FromOrder(o entity.Order, names map[string]string) OrderResponse {
	lines := make([]OrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineDTO{ItemKey: l.ItemKey, Name: names[l.ItemKey], Quantity: l.Quantity})
	}
	return OrderResponse{ID: o.ID, LocationKey: o.LocationKey, OwnerKey: o.OwnerKey, PlacedAt: o.PlacedAt, Lines: lines}
}

// FromOrders convierte el historial de pedidos con los nombres del catálogo.
func FromOrders(list []entity.Order, names map[string]string) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, FromOrder(o, names))
	}
	return out
}

// FromAttendanceRows aplana el historial de asistencia.
func FromAttendanceRows(rows []entity.AttendanceRow) []AttendanceRowResponse {
	out := make([]AttendanceRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, AttendanceRowResponse{
			Date:       r.Date.Format(entity.DateLayout),
			StudentKey: r.StudentKey,
			Present:    r.Present,
		})
	}
	return out
}
