package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
	"github.com/jhoicas/bitacora/internal/infrastructure/memory"
)

var errBoom = errors.New("falla de almacenamiento")

func newEngine(t *testing.T) (*reconcile.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return reconcile.NewEngine("students", store, zerolog.Nop(), nil), store
}

func rec(key, name, surname string) entity.EntityRecord {
	return entity.EntityRecord{IdentityKey: key, Name: name, Surname: surname}
}

func keys(records []entity.EntityRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.IdentityKey)
	}
	return out
}

// staticSource devuelve siempre el mismo roster o el mismo error.
type staticSource struct {
	records []entity.EntityRecord
	err     error
}

func (s staticSource) Fetch(context.Context) ([]entity.EntityRecord, error) {
	return s.records, s.err
}

// failingRunner rechaza toda transacción.
type failingRunner struct{}

func (failingRunner) RunRecords(context.Context, func(repository.RecordRepository, repository.GroupRepository) error) error {
	return errBoom
}

// flakyRunner delega en el almacén pero hace fallar Create.
type flakyRunner struct {
	store *memory.Store
}

func (r flakyRunner) RunRecords(ctx context.Context, fn func(repository.RecordRepository, repository.GroupRepository) error) error {
	return r.store.RunRecords(ctx, func(recordRepo repository.RecordRepository, groupRepo repository.GroupRepository) error {
		return fn(failingCreate{RecordRepository: recordRepo}, groupRepo)
	})
}

type failingCreate struct {
	repository.RecordRepository
}

func (failingCreate) Create(context.Context, string, *entity.EntityRecord) error {
	return errBoom
}
