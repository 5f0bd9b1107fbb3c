package repository

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// GroupRepository persiste grupos {groupKey -> claves de identidad} por catálogo.
type GroupRepository interface {
	Create(ctx context.Context, catalog string, group *entity.Group) error
	Delete(ctx context.Context, catalog, groupKey string) error
	List(ctx context.Context, catalog string) ([]*entity.Group, error)
}
