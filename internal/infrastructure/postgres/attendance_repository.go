package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

var _ repository.AttendanceRepository = (*AttendanceRepo)(nil)

// AttendanceRepo un snapshot por día (clave primaria day), presencia como JSONB.
type AttendanceRepo struct {
	q Querier
}

// NewAttendanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAttendanceRepository(q Querier) *AttendanceRepo {
	return &AttendanceRepo{q: q}
}

// Upsert reemplaza el snapshot del día si ya existe.
func (r *AttendanceRepo) Upsert(ctx context.Context, s *entity.AttendanceSnapshot) error {
	presence, err := json.Marshal(s.Presence)
	if err != nil {
		return fmt.Errorf("encode presence: %w", err)
	}
	query := `
		INSERT INTO attendance (day, presence, submitted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (day) DO UPDATE SET presence = EXCLUDED.presence, submitted_at = EXCLUDED.submitted_at`
	if _, err := r.q.Exec(ctx, query, entity.DateOf(s.Date), presence, s.SubmittedAt); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// List devuelve todos los snapshots ordenados por día.
func (r *AttendanceRepo) List(ctx context.Context) ([]*entity.AttendanceSnapshot, error) {
	rows, err := r.q.Query(ctx, `SELECT day, presence, submitted_at FROM attendance ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var list []*entity.AttendanceSnapshot
	for rows.Next() {
		var s entity.AttendanceSnapshot
		var raw []byte
		if err := rows.Scan(&s.Date, &raw, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		if err := json.Unmarshal(raw, &s.Presence); err != nil {
			return nil, fmt.Errorf("decode presence %s: %w", s.Date.Format(entity.DateLayout), err)
		}
		s.Date = entity.DateOf(s.Date)
		list = append(list, &s)
	}
	return list, rows.Err()
}
