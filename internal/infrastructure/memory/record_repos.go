package memory

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
)

type recordRepo struct{ d *dataset }

func (r *recordRepo) index(catalog, key string) int {
	for i, rec := range r.d.Records[catalog] {
		if rec.IdentityKey == key {
			return i
		}
	}
	return -1
}

func (r *recordRepo) Create(_ context.Context, catalog string, rec *entity.EntityRecord) error {
	if r.index(catalog, rec.IdentityKey) >= 0 {
		return domain.ErrDuplicate
	}
	r.d.Records[catalog] = append(r.d.Records[catalog], *rec)
	return nil
}

func (r *recordRepo) Update(_ context.Context, catalog string, rec *entity.EntityRecord) error {
	i := r.index(catalog, rec.IdentityKey)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.d.Records[catalog][i] = *rec
	return nil
}

func (r *recordRepo) Delete(_ context.Context, catalog, key string) error {
	i := r.index(catalog, key)
	if i < 0 {
		return domain.ErrNotFound
	}
	recs := r.d.Records[catalog]
	r.d.Records[catalog] = append(recs[:i:i], recs[i+1:]...)
	return nil
}

func (r *recordRepo) DeleteAll(_ context.Context, catalog string) error {
	delete(r.d.Records, catalog)
	return nil
}

func (r *recordRepo) List(_ context.Context, catalog string) ([]*entity.EntityRecord, error) {
	recs := r.d.Records[catalog]
	out := make([]*entity.EntityRecord, 0, len(recs))
	for i := range recs {
		rec := recs[i]
		out = append(out, &rec)
	}
	return out, nil
}

type groupRepo struct{ d *dataset }

func (r *groupRepo) index(catalog, key string) int {
	for i, g := range r.d.Groups[catalog] {
		if g.Key == key {
			return i
		}
	}
	return -1
}

func (r *groupRepo) Create(_ context.Context, catalog string, g *entity.Group) error {
	if r.index(catalog, g.Key) >= 0 {
		return domain.ErrDuplicate
	}
	r.d.Groups[catalog] = append(r.d.Groups[catalog], g.Clone())
	return nil
}

func (r *groupRepo) Delete(_ context.Context, catalog, key string) error {
	i := r.index(catalog, key)
	if i < 0 {
		return domain.ErrNotFound
	}
	groups := r.d.Groups[catalog]
	r.d.Groups[catalog] = append(groups[:i:i], groups[i+1:]...)
	return nil
}

func (r *groupRepo) List(_ context.Context, catalog string) ([]*entity.Group, error) {
	groups := r.d.Groups[catalog]
	out := make([]*entity.Group, 0, len(groups))
	for _, g := range groups {
		g := g.Clone()
		out = append(out, &g)
	}
	return out, nil
}
