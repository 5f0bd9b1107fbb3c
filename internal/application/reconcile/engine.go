// Package reconcile implementa el motor de reconciliación de identidades: combina el roster
// autoritativo (solo lectura, recargado completo) con registros locales administrados por
// operadores, en una vista única sin claves duplicadas donde el registro local gana.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

// LoadReport resultado de cargar un roster autoritativo.
type LoadReport struct {
	Loaded     int // registros aceptados
	Dropped    int // registros sin nombre o sin clave derivable
	Duplicates int // claves repetidas dentro del mismo roster (gana la primera)
}

// Engine mantiene ambos conjuntos y una vista reconciliada materializada, reconstruida en
// cada escritura confirmada. Las lecturas solo copian la vista.
type Engine struct {
	catalog  string
	txRunner TxRunner
	log      zerolog.Logger
	rec      Recorder

	mu            sync.RWMutex
	authoritative []entity.EntityRecord
	local         []entity.EntityRecord // orden de creación
	localIdx      map[string]int
	groups        map[string]entity.Group
	view          []entity.EntityRecord
}

// NewEngine construye el motor para un catálogo (p. ej. "students", "products"). rec puede ser nil.
func NewEngine(catalog string, txRunner TxRunner, log zerolog.Logger, rec Recorder) *Engine {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Engine{
		catalog:  catalog,
		txRunner: txRunner,
		log:      log.With().Str("component", "reconcile").Str("catalog", catalog).Logger(),
		rec:      rec,
		localIdx: make(map[string]int),
		groups:   make(map[string]entity.Group),
	}
}

// Catalog nombre del catálogo.
func (e *Engine) Catalog() string { return e.catalog }

// Load lee los registros locales y los grupos persistidos.
func (e *Engine) Load(ctx context.Context) error {
	var (
		recs   []*entity.EntityRecord
		groups []*entity.Group
	)
	err := e.txRunner.RunRecords(ctx, func(recordRepo repository.RecordRepository, groupRepo repository.GroupRepository) error {
		var err error
		if recs, err = recordRepo.List(ctx, e.catalog); err != nil {
			return err
		}
		groups, err = groupRepo.List(ctx, e.catalog)
		return err
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", e.catalog, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.local = make([]entity.EntityRecord, 0, len(recs))
	e.localIdx = make(map[string]int, len(recs))
	for _, r := range recs {
		rec := *r
		rec.Source = entity.ProvenanceLocal
		if _, dup := e.localIdx[rec.IdentityKey]; dup {
			continue
		}
		e.localIdx[rec.IdentityKey] = len(e.local)
		e.local = append(e.local, rec)
	}
	e.groups = make(map[string]entity.Group, len(groups))
	for _, g := range groups {
		e.groups[g.Key] = g.Clone()
	}
	e.rebuild()
	return nil
}

// LoadAuthoritative reemplaza por completo el conjunto autoritativo. Los registros
// malformados se descartan y se cuentan; el intercambio es atómico para los lectores.
func (e *Engine) LoadAuthoritative(records []entity.EntityRecord) LoadReport {
	var report LoadReport
	next := make([]entity.EntityRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		rec, ok := r.Normalize()
		if !ok {
			report.Dropped++
			continue
		}
		if _, dup := seen[rec.IdentityKey]; dup {
			report.Duplicates++
			continue
		}
		seen[rec.IdentityKey] = struct{}{}
		rec.Source = entity.ProvenanceAuthoritative
		next = append(next, rec)
	}
	report.Loaded = len(next)

	e.mu.Lock()
	e.authoritative = next
	e.rebuild()
	e.mu.Unlock()

	e.rec.RosterLoaded(e.catalog, report.Loaded, report.Dropped)
	e.log.Info().Int("loaded", report.Loaded).Int("dropped", report.Dropped).
		Int("duplicates", report.Duplicates).Msg("roster autoritativo cargado")
	return report
}

// Refresh obtiene el roster de src y lo carga. Si la fuente falla se conserva el
// conjunto autoritativo anterior y se devuelve domain.ErrUpstreamUnavailable.
func (e *Engine) Refresh(ctx context.Context, src RosterSource) (LoadReport, error) {
	records, err := src.Fetch(ctx)
	if err != nil {
		e.rec.RosterRefreshFailed(e.catalog)
		e.log.Warn().Err(err).Msg("roster no disponible, se conserva el anterior")
		return LoadReport{}, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return e.LoadAuthoritative(records), nil
}

// AddLocal crea un registro local. Falla con domain.ErrDuplicate solo si la clave ya
// existe entre los locales; una clave autoritativa existente queda sombreada.
func (e *Engine) AddLocal(ctx context.Context, record entity.EntityRecord) error {
	rec, ok := record.Normalize()
	if !ok {
		return domain.ErrInvalidInput
	}
	rec.Source = entity.ProvenanceLocal

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.localIdx[rec.IdentityKey]; exists {
		e.log.Debug().Str("identity_key", rec.IdentityKey).Msg("alta rechazada: clave duplicada")
		return domain.ErrDuplicate
	}
	err := e.txRunner.RunRecords(ctx, func(recordRepo repository.RecordRepository, _ repository.GroupRepository) error {
		return recordRepo.Create(ctx, e.catalog, &rec)
	})
	if err != nil {
		return err
	}
	e.localIdx[rec.IdentityKey] = len(e.local)
	e.local = append(e.local, rec)
	e.rebuild()
	e.rec.LocalMutation(e.catalog, "add")
	return nil
}

// UpdateLocal reemplaza los campos descriptivos de un registro local. Un registro solo
// autoritativo no se puede actualizar (domain.ErrNotFound).
func (e *Engine) UpdateLocal(ctx context.Context, identityKey string, fields entity.RecordFields) error {
	identityKey = strings.TrimSpace(identityKey)

	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.localIdx[identityKey]
	if !ok {
		return domain.ErrNotFound
	}
	rec, valid := e.local[i].WithFields(fields).Normalize()
	if !valid {
		return domain.ErrInvalidInput
	}
	err := e.txRunner.RunRecords(ctx, func(recordRepo repository.RecordRepository, _ repository.GroupRepository) error {
		return recordRepo.Update(ctx, e.catalog, &rec)
	})
	if err != nil {
		return err
	}
	e.local[i] = rec
	e.rebuild()
	e.rec.LocalMutation(e.catalog, "update")
	return nil
}

// DeleteLocal elimina un registro local; el autoritativo con la misma clave, si existe,
// vuelve a ser visible.
func (e *Engine) DeleteLocal(ctx context.Context, identityKey string) error {
	identityKey = strings.TrimSpace(identityKey)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.localIdx[identityKey]; !ok {
		return domain.ErrNotFound
	}
	err := e.txRunner.RunRecords(ctx, func(recordRepo repository.RecordRepository, _ repository.GroupRepository) error {
		return recordRepo.Delete(ctx, e.catalog, identityKey)
	})
	if err != nil {
		return err
	}
	e.removeLocal(identityKey)
	e.rebuild()
	e.rec.LocalMutation(e.catalog, "delete")
	return nil
}

// ClearAllLocal elimina todos los registros locales sin tocar los autoritativos.
func (e *Engine) ClearAllLocal(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.txRunner.RunRecords(ctx, func(recordRepo repository.RecordRepository, _ repository.GroupRepository) error {
		return recordRepo.DeleteAll(ctx, e.catalog)
	})
	if err != nil {
		return err
	}
	e.local = nil
	e.localIdx = make(map[string]int)
	e.rebuild()
	e.rec.LocalMutation(e.catalog, "clear")
	return nil
}

// RekeyLocal cambia la clave de un registro local como una sola operación atómica
// (baja de oldKey + alta de record). Los lectores nunca ven el estado intermedio.
func (e *Engine) RekeyLocal(ctx context.Context, oldKey string, record entity.EntityRecord) error {
	oldKey = strings.TrimSpace(oldKey)
	rec, ok := record.Normalize()
	if !ok {
		return domain.ErrInvalidInput
	}
	rec.Source = entity.ProvenanceLocal

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.localIdx[oldKey]; !exists {
		return domain.ErrNotFound
	}
	if _, exists := e.localIdx[rec.IdentityKey]; exists && rec.IdentityKey != oldKey {
		return domain.ErrDuplicate
	}
	err := e.txRunner.RunRecords(ctx, func(recordRepo repository.RecordRepository, _ repository.GroupRepository) error {
		if err := recordRepo.Delete(ctx, e.catalog, oldKey); err != nil {
			return err
		}
		return recordRepo.Create(ctx, e.catalog, &rec)
	})
	if err != nil {
		return err
	}
	e.removeLocal(oldKey)
	e.localIdx[rec.IdentityKey] = len(e.local)
	e.local = append(e.local, rec)
	e.rebuild()
	e.rec.LocalMutation(e.catalog, "rekey")
	return nil
}

// removeLocal quita key del conjunto local y reindexa. Requiere e.mu tomado.
func (e *Engine) removeLocal(key string) {
	i := e.localIdx[key]
	e.local = append(e.local[:i:i], e.local[i+1:]...)
	delete(e.localIdx, key)
	for j := i; j < len(e.local); j++ {
		e.localIdx[e.local[j].IdentityKey] = j
	}
}

// rebuild recalcula la vista reconciliada: orden del roster autoritativo (con el local
// sustituido en su lugar) seguido de los locales sin contraparte, en orden de creación.
// Requiere e.mu tomado.
func (e *Engine) rebuild() {
	view := make([]entity.EntityRecord, 0, len(e.authoritative)+len(e.local))
	shadowed := make(map[string]struct{}, len(e.local))
	for _, a := range e.authoritative {
		if i, ok := e.localIdx[a.IdentityKey]; ok {
			view = append(view, e.local[i])
			shadowed[a.IdentityKey] = struct{}{}
			continue
		}
		view = append(view, a)
	}
	for _, l := range e.local {
		if _, ok := shadowed[l.IdentityKey]; !ok {
			view = append(view, l)
		}
	}
	e.view = view
}

// Reconciled devuelve la vista reconciliada: un registro por clave, el local gana completo.
func (e *Engine) Reconciled() []entity.EntityRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]entity.EntityRecord(nil), e.view...)
}

// Lookup busca una clave en la vista reconciliada.
func (e *Engine) Lookup(identityKey string) (entity.EntityRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i, ok := e.localIdx[identityKey]; ok {
		return e.local[i], true
	}
	for _, a := range e.authoritative {
		if a.IdentityKey == identityKey {
			return a, true
		}
	}
	return entity.EntityRecord{}, false
}

// IsLocal indica si la clave existe entre los registros locales.
func (e *Engine) IsLocal(identityKey string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.localIdx[identityKey]
	return ok
}

// Names devuelve identityKey -> nombre completo de la vista reconciliada.
func (e *Engine) Names() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]string, len(e.view))
	for _, r := range e.view {
		out[r.IdentityKey] = r.FullName()
	}
	return out
}
