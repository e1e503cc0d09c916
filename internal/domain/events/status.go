package events

import "time"

// Phase clasifica el ciclo de vida de un evento respecto a un instante dado.
// @Enum upcoming, active, ended
type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhaseActive   Phase = "active"
	PhaseEnded    Phase = "ended"
)

// Status es el snapshot derivado de comparar "now" contra la ventana del evento.
type Status struct {
	Phase     Phase
	CanAttend bool

	// SecondsUntilStart solo está definido en upcoming.
	// SecondsUntilEnd solo está definido en active.
	SecondsUntilStart *int64
	SecondsUntilEnd   *int64
}

// StatusAt clasifica la ventana [start, end], inclusiva en ambos bordes:
// now == start y now == end cuentan como active.
// Función pura: no consulta reloj ni estado; "now" siempre viene del caller.
func StatusAt(now, start, end time.Time) Status {
	switch {
	case now.Before(start):
		secs := int64(start.Sub(now) / time.Second)
		return Status{Phase: PhaseUpcoming, SecondsUntilStart: &secs}
	case now.After(end):
		return Status{Phase: PhaseEnded}
	default:
		secs := int64(end.Sub(now) / time.Second)
		return Status{Phase: PhaseActive, CanAttend: true, SecondsUntilEnd: &secs}
	}
}

// StatusOf aplica StatusAt sobre la ventana almacenada del evento.
func (e Event) StatusOf(now time.Time) Status {
	return StatusAt(now, e.StartTime, e.EndTime)
}
