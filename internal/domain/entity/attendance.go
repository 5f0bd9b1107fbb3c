package entity

import "time"

// DateLayout formato de fecha (día calendario) usado en claves y en la API.
const DateLayout = "2006-01-02"

// AttendanceSnapshot estado completo de asistencia de un día: studentKey -> presente.
// Un envío para una fecha existente reemplaza el snapshot anterior.
type AttendanceSnapshot struct {
	Date        time.Time
	Presence    map[string]bool
	SubmittedAt time.Time
}

// Clone copia el snapshot y su mapa de presencia.
func (s AttendanceSnapshot) Clone() AttendanceSnapshot {
	p := make(map[string]bool, len(s.Presence))
	for k, v := range s.Presence {
		p[k] = v
	}
	s.Presence = p
	return s
}

// AttendanceRow fila aplanada del historial de asistencia.
type AttendanceRow struct {
	Date       time.Time
	StudentKey string
	Present    bool
}

// DateOf trunca t a su día calendario (medianoche UTC, sin componente horario).
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
