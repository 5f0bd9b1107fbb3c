package reconcile

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

// CreateGroup crea un grupo con los miembros dados (sin repetir, en el orden recibido).
// No valida que los miembros existan en la vista reconciliada.
func (e *Engine) CreateGroup(ctx context.Context, groupKey string, members []string) error {
	groupKey = strings.TrimSpace(groupKey)
	if groupKey == "" {
		return domain.ErrInvalidInput
	}
	group := entity.Group{Key: groupKey, Members: make([]string, 0, len(members))}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		group.Members = append(group.Members, m)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.groups[groupKey]; exists {
		return domain.ErrDuplicate
	}
	err := e.txRunner.RunRecords(ctx, func(_ repository.RecordRepository, groupRepo repository.GroupRepository) error {
		return groupRepo.Create(ctx, e.catalog, &group)
	})
	if err != nil {
		return err
	}
	e.groups[groupKey] = group
	e.rec.LocalMutation(e.catalog, "create_group")
	return nil
}

// DeleteGroup elimina un grupo; domain.ErrNotFound si no existe.
func (e *Engine) DeleteGroup(ctx context.Context, groupKey string) error {
	groupKey = strings.TrimSpace(groupKey)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.groups[groupKey]; !exists {
		return domain.ErrNotFound
	}
	err := e.txRunner.RunRecords(ctx, func(_ repository.RecordRepository, groupRepo repository.GroupRepository) error {
		return groupRepo.Delete(ctx, e.catalog, groupKey)
	})
	if err != nil {
		return err
	}
	delete(e.groups, groupKey)
	e.rec.LocalMutation(e.catalog, "delete_group")
	return nil
}

// GroupsContaining devuelve, ordenadas, las claves de los grupos que incluyen identityKey.
func (e *Engine) GroupsContaining(identityKey string) []string {
	identityKey = strings.TrimSpace(identityKey)
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := []string{}
	for key, g := range e.groups {
		if g.Has(identityKey) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Groups lista los grupos ordenados por clave.
func (e *Engine) Groups() []entity.Group {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]entity.Group, 0, len(e.groups))
	for _, g := range e.groups {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// GroupMembers resuelve los miembros del grupo contra la vista reconciliada, en el orden
// del grupo. Las claves que ya no existen se omiten sin error.
func (e *Engine) GroupMembers(groupKey string) ([]entity.EntityRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.groups[strings.TrimSpace(groupKey)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	byKey := make(map[string]entity.EntityRecord, len(e.view))
	for _, r := range e.view {
		byKey[r.IdentityKey] = r
	}
	out := make([]entity.EntityRecord, 0, len(g.Members))
	for _, m := range g.Members {
		if r, ok := byKey[m]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Group devuelve el grupo groupKey, si existe.
func (e *Engine) Group(groupKey string) (entity.Group, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.groups[strings.TrimSpace(groupKey)]
	if !ok {
		return entity.Group{}, false
	}
	return g.Clone(), true
}
