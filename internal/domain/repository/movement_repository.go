package repository

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// MovementRepository puerto de persistencia del libro de movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// List devuelve el libro completo en orden de inserción.
	List(ctx context.Context) ([]*entity.Movement, error)
}
