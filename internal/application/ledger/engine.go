// Package ledger implementa el motor de libro append-only: registra movimientos,
// pedidos y asistencia, y deriva el estado actual plegando el libro.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	domainledger "github.com/jhoicas/bitacora/internal/domain/ledger"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

// Engine mantiene en memoria el libro y una vista materializada (totales corridos)
// que se actualiza en cada escritura confirmada. Las lecturas no se bloquean entre sí.
type Engine struct {
	txRunner TxRunner
	log      zerolog.Logger
	rec      Recorder
	now      func() time.Time

	mu         sync.RWMutex
	movements  []entity.Movement
	totals     map[string]int64
	orders     []entity.Order
	attendance map[string]entity.AttendanceSnapshot
	lastStamp  time.Time
}

// NewEngine construye el motor. rec puede ser nil.
func NewEngine(txRunner TxRunner, log zerolog.Logger, rec Recorder) *Engine {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Engine{
		txRunner:   txRunner,
		log:        log.With().Str("component", "ledger").Logger(),
		rec:        rec,
		now:        time.Now,
		totals:     make(map[string]int64),
		attendance: make(map[string]entity.AttendanceSnapshot),
	}
}

// SetClock reemplaza el reloj (tests).
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

// MovementInputDTO entrada para registrar un movimiento.
type MovementInputDTO struct {
	ItemKey  string
	Quantity int64
	Type     string
}

// Load reconstruye el estado reproduciendo el libro persistido.
func (e *Engine) Load(ctx context.Context) error {
	var (
		movs   []*entity.Movement
		orders []*entity.Order
		snaps  []*entity.AttendanceSnapshot
	)
	err := e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
		attendanceRepo repository.AttendanceRepository,
	) error {
		var err error
		if movs, err = movRepo.List(ctx); err != nil {
			return err
		}
		if orders, err = orderRepo.List(ctx); err != nil {
			return err
		}
		snaps, err = attendanceRepo.List(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	movements := make([]entity.Movement, 0, len(movs))
	var last time.Time
	for _, m := range movs {
		movements = append(movements, *m)
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}
	orderList := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		orderList = append(orderList, o.Clone())
	}
	attendance := make(map[string]entity.AttendanceSnapshot, len(snaps))
	for _, s := range snaps {
		attendance[s.Date.Format(entity.DateLayout)] = s.Clone()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.movements = movements
	e.totals = domainledger.Fold(movements)
	e.orders = orderList
	e.attendance = attendance
	e.lastStamp = last
	e.log.Info().Int("movements", len(movements)).Int("orders", len(orderList)).
		Int("attendance_days", len(attendance)).Msg("libro reconstruido")
	return nil
}

// Append valida y agrega un movimiento al libro. La cantidad debe ser > 0.
func (e *Engine) Append(ctx context.Context, in MovementInputDTO) (entity.Movement, error) {
	in.ItemKey = strings.TrimSpace(in.ItemKey)
	if in.ItemKey == "" || in.Quantity <= 0 || !entity.ValidMovementType(in.Type) {
		e.rec.CommandRejected("append")
		e.log.Debug().Str("item_key", in.ItemKey).Int64("quantity", in.Quantity).
			Str("type", in.Type).Msg("movimiento rechazado")
		return entity.Movement{}, domain.ErrInvalidInput
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	mov := entity.Movement{
		ID:        uuid.New().String(),
		ItemKey:   in.ItemKey,
		Quantity:  in.Quantity,
		Type:      in.Type,
		Timestamp: e.stamp(),
	}
	if _, ok := domainledger.Add(e.totals[mov.ItemKey], mov.Signed()); !ok {
		e.rec.CommandRejected("append")
		e.log.Warn().Str("item_key", mov.ItemKey).Int64("quantity", mov.Quantity).
			Msg("movimiento rechazado: la cantidad desborda")
		return entity.Movement{}, domain.ErrInvalidInput
	}
	err := e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.OrderRepository,
		_ repository.AttendanceRepository,
	) error {
		return movRepo.Create(ctx, &mov)
	})
	if err != nil {
		return entity.Movement{}, err
	}
	e.commit(mov)
	e.rec.MovementsAppended(mov.Type, 1)
	return mov, nil
}

// stamp devuelve la marca de tiempo de inserción, no decreciente dentro del proceso.
// Requiere e.mu tomado.
func (e *Engine) stamp() time.Time {
	t := e.now()
	if t.Before(e.lastStamp) {
		return e.lastStamp
	}
	return t
}

// commit aplica un movimiento ya persistido al libro y a la vista. Requiere e.mu tomado.
func (e *Engine) commit(m entity.Movement) {
	e.movements = append(e.movements, m)
	domainledger.Apply(e.totals, m)
	if m.Timestamp.After(e.lastStamp) {
		e.lastStamp = m.Timestamp
	}
}

// CurrentQuantity cantidad actual de itemKey (0 si no tiene movimientos, puede ser negativa).
func (e *Engine) CurrentQuantity(itemKey string) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totals[itemKey]
}

// CurrentQuantities cantidades actuales de todas las referencias con movimientos.
func (e *Engine) CurrentQuantities() map[string]int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]int64, len(e.totals))
	for k, v := range e.totals {
		out[k] = v
	}
	return out
}

// Replay pliega el libro completo desde cero, ignorando la vista materializada.
func (e *Engine) Replay() map[string]int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return domainledger.Fold(e.movements)
}

// Verify compara la vista materializada con un replay completo.
func (e *Engine) Verify() error {
	replayed := e.Replay()
	current := e.CurrentQuantities()
	for k, v := range replayed {
		if current[k] != v {
			return fmt.Errorf("cantidad de %q: vista %d, replay %d", k, current[k], v)
		}
	}
	for k, v := range current {
		if _, ok := replayed[k]; !ok && v != 0 {
			return fmt.Errorf("cantidad de %q: vista %d sin movimientos", k, v)
		}
	}
	return nil
}

// Movements devuelve los movimientos en orden de inserción; itemKey vacío = libro completo.
func (e *Engine) Movements(itemKey string) []entity.Movement {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]entity.Movement, 0, len(e.movements))
	for _, m := range e.movements {
		if itemKey == "" || m.ItemKey == itemKey {
			out = append(out, m)
		}
	}
	return out
}

// Len cantidad de movimientos en el libro.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.movements)
}
