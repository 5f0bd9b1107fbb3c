package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
	"github.com/jhoicas/bitacora/internal/infrastructure/memory"
)

var errBoom = errors.New("falla de almacenamiento")

func newEngine(t *testing.T) (*ledger.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return ledger.NewEngine(store, zerolog.Nop(), nil), store
}

func in(item string, qty int64) ledger.MovementInputDTO {
	return ledger.MovementInputDTO{ItemKey: item, Quantity: qty, Type: entity.MovementTypeIN}
}

func out(item string, qty int64) ledger.MovementInputDTO {
	return ledger.MovementInputDTO{ItemKey: item, Quantity: qty, Type: entity.MovementTypeOUT}
}

// stepClock devuelve instantes crecientes de un minuto a partir de start.
func stepClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
}

// failingRunner rechaza toda transacción.
type failingRunner struct{}

func (failingRunner) Run(context.Context, func(
	repository.MovementRepository,
	repository.OrderRepository,
	repository.AttendanceRepository,
) error) error {
	return errBoom
}

// flakyRunner delega en el almacén pero hace fallar el movimiento número failAt (desde 0).
type flakyRunner struct {
	store  *memory.Store
	failAt int
}

func (r *flakyRunner) Run(ctx context.Context, fn func(
	repository.MovementRepository,
	repository.OrderRepository,
	repository.AttendanceRepository,
) error) error {
	return r.store.Run(ctx, func(
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
		attendanceRepo repository.AttendanceRepository,
	) error {
		return fn(&flakyMovements{MovementRepository: movRepo, left: r.failAt}, orderRepo, attendanceRepo)
	})
}

type flakyMovements struct {
	repository.MovementRepository
	left int
}

func (f *flakyMovements) Create(ctx context.Context, m *entity.Movement) error {
	if f.left == 0 {
		return errBoom
	}
	f.left--
	return f.MovementRepository.Create(ctx, m)
}
