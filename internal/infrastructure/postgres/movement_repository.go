package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento. El libro no admite Update ni Delete.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, order_id, item_key, quantity, type, ts)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, m.ID, nullIfEmpty(m.OrderID), m.ItemKey, m.Quantity, m.Type, m.Timestamp)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// List devuelve el libro completo en orden de inserción.
func (r *MovementRepo) List(ctx context.Context) ([]*entity.Movement, error) {
	query := `SELECT id, order_id, item_key, quantity, type, ts FROM movements ORDER BY seq`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var orderID *string
		if err := rows.Scan(&m.ID, &orderID, &m.ItemKey, &m.Quantity, &m.Type, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if orderID != nil {
			m.OrderID = *orderID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
