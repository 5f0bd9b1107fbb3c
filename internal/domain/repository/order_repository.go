package repository

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// OrderRepository puerto de persistencia de pedidos (inmutables).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	List(ctx context.Context) ([]*entity.Order, error)
}
