package attendance

import (
	"context"
	"errors"
)

var (
	// ErrExists la devuelve Create cuando ya hay un registro para el par.
	// El service lo convierte en éxito idempotente, nunca llega al caller.
	ErrExists = errors.New("attendance already recorded")

	// ErrNoRecord la devuelve Get cuando el par no tiene registro.
	ErrNoRecord = errors.New("attendance record not found")
)

type Repository interface {
	// Create es un "create if absent" atómico respecto a intentos concurrentes
	// del mismo (personID, eventID): la unicidad la garantiza el storage
	// (constraint / sección crítica), no un check-then-insert del caller.
	Create(ctx context.Context, a Attendance) error
	Get(ctx context.Context, personID, eventID string) (Attendance, error)
	ListByEvent(ctx context.Context, eventID string) ([]Attendance, error)
	ListByPerson(ctx context.Context, personID string) ([]Attendance, error)
}
