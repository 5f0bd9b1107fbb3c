package ledger

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a ella.
// Si fn devuelve error no se persiste nada (Rollback).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
		attendanceRepo repository.AttendanceRepository,
	) error) error
}

// Recorder recibe señales de observabilidad del motor (métricas).
type Recorder interface {
	MovementsAppended(movementType string, n int)
	CommandRejected(command string)
}

type nopRecorder struct{}

func (nopRecorder) MovementsAppended(string, int) {}
func (nopRecorder) CommandRejected(string)        {}
