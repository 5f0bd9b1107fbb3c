package ledger

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

// SubmitAttendance reemplaza (upsert por fecha) el snapshot de asistencia de date.
// Nunca deja dos snapshots para el mismo día. Dos claves que coinciden tras recortar
// espacios son una entrada inválida.
func (e *Engine) SubmitAttendance(ctx context.Context, date time.Time, snapshot map[string]bool) error {
	if date.IsZero() {
		e.rec.CommandRejected("submit_attendance")
		return domain.ErrInvalidInput
	}
	presence := make(map[string]bool, len(snapshot))
	for k, v := range snapshot {
		k = strings.TrimSpace(k)
		if _, dup := presence[k]; k == "" || dup {
			e.rec.CommandRejected("submit_attendance")
			return domain.ErrInvalidInput
		}
		presence[k] = v
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap := entity.AttendanceSnapshot{
		Date:        entity.DateOf(date),
		Presence:    presence,
		SubmittedAt: e.now(),
	}
	err := e.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		_ repository.OrderRepository,
		attendanceRepo repository.AttendanceRepository,
	) error {
		return attendanceRepo.Upsert(ctx, &snap)
	})
	if err != nil {
		return err
	}
	e.attendance[snap.Date.Format(entity.DateLayout)] = snap
	e.log.Debug().Str("date", snap.Date.Format(entity.DateLayout)).
		Int("students", len(presence)).Msg("asistencia registrada")
	return nil
}

// Attendance devuelve el snapshot de date, si existe.
func (e *Engine) Attendance(date time.Time) (entity.AttendanceSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.attendance[entity.DateOf(date).Format(entity.DateLayout)]
	if !ok {
		return entity.AttendanceSnapshot{}, false
	}
	return s.Clone(), true
}

// AttendanceHistory aplana todos los snapshots en filas (fecha, estudiante, presente),
// ordenadas por fecha y estudiante.
func (e *Engine) AttendanceHistory() []entity.AttendanceRow {
	e.mu.RLock()
	rows := make([]entity.AttendanceRow, 0, len(e.attendance))
	for _, s := range e.attendance {
		for student, present := range s.Presence {
			rows = append(rows, entity.AttendanceRow{Date: s.Date, StudentKey: student, Present: present})
		}
	}
	e.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].StudentKey < rows[j].StudentKey
	})
	return rows
}
