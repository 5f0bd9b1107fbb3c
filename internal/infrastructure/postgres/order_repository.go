package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// orderLineRow forma de cada línea dentro de la columna JSONB lines.
type orderLineRow struct {
	ItemKey  string `json:"item_key"`
	Quantity int64  `json:"quantity"`
}

func encodeLines(lines []entity.OrderLine) ([]byte, error) {
	rows := make([]orderLineRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, orderLineRow{ItemKey: l.ItemKey, Quantity: l.Quantity})
	}
	return json.Marshal(rows)
}

func decodeLines(raw []byte) ([]entity.OrderLine, error) {
	var rows []orderLineRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	lines := make([]entity.OrderLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, entity.OrderLine{ItemKey: r.ItemKey, Quantity: r.Quantity})
	}
	return lines, nil
}

// OrderRepo pedidos sobre PostgreSQL; las líneas se guardan como JSONB.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste un pedido.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	lines, err := encodeLines(o.Lines)
	if err != nil {
		return fmt.Errorf("encode order lines: %w", err)
	}
	query := `
		INSERT INTO orders (id, location_key, owner_key, placed_at, lines)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, o.ID, o.LocationKey, o.OwnerKey, o.PlacedAt, lines); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// List devuelve los pedidos en orden de registro.
func (r *OrderRepo) List(ctx context.Context) ([]*entity.Order, error) {
	query := `SELECT id, location_key, owner_key, placed_at, lines FROM orders ORDER BY seq`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		var raw []byte
		if err := rows.Scan(&o.ID, &o.LocationKey, &o.OwnerKey, &o.PlacedAt, &raw); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.Lines, err = decodeLines(raw); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", o.ID, err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
