package repository

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// RecordRepository persiste los registros locales de un catálogo (students, products...).
// Los registros autoritativos nunca se persisten.
type RecordRepository interface {
	// Create devuelve domain.ErrDuplicate si la clave ya existe en el catálogo.
	Create(ctx context.Context, catalog string, record *entity.EntityRecord) error
	// Update y Delete devuelven domain.ErrNotFound si la clave no existe.
	Update(ctx context.Context, catalog string, record *entity.EntityRecord) error
	Delete(ctx context.Context, catalog, identityKey string) error
	DeleteAll(ctx context.Context, catalog string) error
	// List devuelve los registros en orden de creación.
	List(ctx context.Context, catalog string) ([]*entity.EntityRecord, error)
}
