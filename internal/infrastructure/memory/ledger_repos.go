package memory

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

type movementRepo struct{ d *dataset }

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.d.Movements = append(r.d.Movements, *m)
	return nil
}

func (r *movementRepo) List(_ context.Context) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0, len(r.d.Movements))
	for i := range r.d.Movements {
		m := r.d.Movements[i]
		out = append(out, &m)
	}
	return out, nil
}

type orderRepo struct{ d *dataset }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	r.d.Orders = append(r.d.Orders, o.Clone())
	return nil
}

func (r *orderRepo) List(_ context.Context) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(r.d.Orders))
	for _, o := range r.d.Orders {
		o := o.Clone()
		out = append(out, &o)
	}
	return out, nil
}

type attendanceRepo struct{ d *dataset }

func (r *attendanceRepo) Upsert(_ context.Context, s *entity.AttendanceSnapshot) error {
	snap := s.Clone()
	for i := range r.d.Attendance {
		if r.d.Attendance[i].Date.Equal(snap.Date) {
			r.d.Attendance[i] = snap
			return nil
		}
	}
	r.d.Attendance = append(r.d.Attendance, snap)
	return nil
}

func (r *attendanceRepo) List(_ context.Context) ([]*entity.AttendanceSnapshot, error) {
	out := make([]*entity.AttendanceSnapshot, 0, len(r.d.Attendance))
	for _, s := range r.d.Attendance {
		s := s.Clone()
		out = append(out, &s)
	}
	return out, nil
}
