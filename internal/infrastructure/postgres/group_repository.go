package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

var _ repository.GroupRepository = (*GroupRepo)(nil)

// GroupRepo grupos por catálogo; los miembros van en una columna TEXT[].
type GroupRepo struct {
	q Querier
}

// NewGroupRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGroupRepository(q Querier) *GroupRepo {
	return &GroupRepo{q: q}
}

// Create persiste un grupo; domain.ErrDuplicate si la clave ya existe.
func (r *GroupRepo) Create(ctx context.Context, catalog string, g *entity.Group) error {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	query := `INSERT INTO record_groups (catalog, group_key, members) VALUES ($1, $2, $3)`
	if _, err := r.q.Exec(ctx, query, catalog, g.Key, members); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

// Delete elimina un grupo; domain.ErrNotFound si no existe.
func (r *GroupRepo) Delete(ctx context.Context, catalog, groupKey string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM record_groups WHERE catalog = $1 AND group_key = $2`, catalog, groupKey)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve los grupos del catálogo ordenados por clave.
func (r *GroupRepo) List(ctx context.Context, catalog string) ([]*entity.Group, error) {
	rows, err := r.q.Query(ctx, `SELECT group_key, members FROM record_groups WHERE catalog = $1 ORDER BY group_key`, catalog)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var list []*entity.Group
	for rows.Next() {
		var g entity.Group
		if err := rows.Scan(&g.Key, &g.Members); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		list = append(list, &g)
	}
	return list, rows.Err()
}
