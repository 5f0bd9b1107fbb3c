package repository

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// AttendanceRepository guarda un único snapshot por fecha.
type AttendanceRepository interface {
	// Upsert reemplaza el snapshot de la fecha si ya existe.
	Upsert(ctx context.Context, snapshot *entity.AttendanceSnapshot) error
	List(ctx context.Context) ([]*entity.AttendanceSnapshot, error)
}
