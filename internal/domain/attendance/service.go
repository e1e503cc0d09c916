package attendance

import (
	"context"
	"errors"
	"strings"
	"time"

	"event-attendance/internal/domain/events"
	"event-attendance/internal/domain/persons"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound cubre persona o evento inexistente, o cualquiera de los dos inactivo.
	ErrNotFound = errors.New("person or event not found")

	// Rechazos por fase. No son fallas del sistema: son frecuentes y esperados.
	ErrTooEarly = errors.New("event has not started yet")
	ErrTooLate  = errors.New("event already ended")
)

// GateError envuelve ErrTooEarly / ErrTooLate con el snapshot de status para
// que el boundary pueda armar el mensaje tipo "empieza en N minutos".
// Se extrae con errors.As; errors.Is sigue matcheando el sentinel.
type GateError struct {
	Event  events.Event
	Status events.Status

	reason error
}

func (e *GateError) Error() string { return e.reason.Error() }
func (e *GateError) Unwrap() error { return e.reason }

// Service es el ledger de asistencia: la única escritura del sistema pasa por
// acá, gateada por el Status Oracle.
type Service struct {
	repo    Repository
	events  *events.Service
	persons *persons.Service
}

func NewService(repo Repository, eventsSvc *events.Service, personsSvc *persons.Service) *Service {
	return &Service{
		repo:    repo,
		events:  eventsSvc,
		persons: personsSvc,
	}
}

// Result es el payload de éxito de Record: el hecho de asistencia más los
// snapshots de evento y persona que el boundary devuelve al caller.
type Result struct {
	Attendance Attendance
	Event      events.Event
	Person     persons.Person
	Status     events.Status

	// AlreadyRecorded indica que este Record fue un reintento: la asistencia
	// devuelta conserva el AttendedAt original, no el "now" de esta llamada.
	AlreadyRecorded bool
}

// Record registra asistencia si la ventana del evento está abierta en "now".
//   - persona o evento inexistente, o persona/evento inactivo => ErrNotFound
//   - fase upcoming => GateError(ErrTooEarly) con SecondsUntilStart
//   - fase ended   => GateError(ErrTooLate)
//   - fase active  => insert condicional atómico; si el par ya existía,
//     éxito idempotente con el registro original intacto.
func (s *Service) Record(ctx context.Context, personID, eventID string, now time.Time) (Result, error) {
	personID = strings.TrimSpace(personID)
	eventID = strings.TrimSpace(eventID)
	if personID == "" || eventID == "" {
		return Result{}, ErrInvalidInput
	}

	p, err := s.persons.GetByID(ctx, personID)
	if errors.Is(err, persons.ErrNotFound) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}
	if !p.Active {
		return Result{}, ErrNotFound
	}

	e, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, events.ErrNotFound) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}
	if !e.Active {
		return Result{}, ErrNotFound
	}

	st := e.StatusOf(now)
	switch st.Phase {
	case events.PhaseUpcoming:
		return Result{}, &GateError{Event: e, Status: st, reason: ErrTooEarly}
	case events.PhaseEnded:
		return Result{}, &GateError{Event: e, Status: st, reason: ErrTooLate}
	}

	a := Attendance{
		PersonID:   p.ID,
		EventID:    e.ID,
		AttendedAt: now,
	}

	err = s.repo.Create(ctx, a)
	if errors.Is(err, ErrExists) {
		existing, gerr := s.repo.Get(ctx, p.ID, e.ID)
		if gerr != nil {
			return Result{}, gerr
		}
		return Result{
			Attendance:      existing,
			Event:           e,
			Person:          p,
			Status:          st,
			AlreadyRecorded: true,
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	return Result{Attendance: a, Event: e, Person: p, Status: st}, nil
}

// HasAttended es una consulta pura, sin gating.
func (s *Service) HasAttended(ctx context.Context, personID, eventID string) (bool, error) {
	personID = strings.TrimSpace(personID)
	eventID = strings.TrimSpace(eventID)
	if personID == "" || eventID == "" {
		return false, ErrInvalidInput
	}

	_, err := s.repo.Get(ctx, personID, eventID)
	if errors.Is(err, ErrNoRecord) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Attendee es una fila de la lista de asistentes de un evento.
type Attendee struct {
	Person     persons.Person
	AttendedAt time.Time
}

func (s *Service) ListAttendees(ctx context.Context, eventID string) ([]Attendee, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	out := make([]Attendee, 0, len(rows))
	for _, a := range rows {
		p, err := s.persons.GetByID(ctx, a.PersonID)
		if err != nil {
			return nil, err
		}
		out = append(out, Attendee{Person: p, AttendedAt: a.AttendedAt})
	}
	return out, nil
}

// AttendedEvent es una fila del historial de asistencia de una persona.
type AttendedEvent struct {
	Event      events.Event
	AttendedAt time.Time
}

func (s *Service) ListAttendedEvents(ctx context.Context, personID string) ([]AttendedEvent, error) {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.persons.GetByID(ctx, personID); err != nil {
		if errors.Is(err, persons.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.repo.ListByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	out := make([]AttendedEvent, 0, len(rows))
	for _, a := range rows {
		e, err := s.events.GetByID(ctx, a.EventID)
		if err != nil {
			return nil, err
		}
		out = append(out, AttendedEvent{Event: e, AttendedAt: a.AttendedAt})
	}
	return out, nil
}
