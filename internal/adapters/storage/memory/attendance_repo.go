package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"event-attendance/internal/domain/attendance"
)

type attendanceKey struct {
	personID string
	eventID  string
}

type attendanceRepo struct {
	mu     sync.Mutex
	byPair map[attendanceKey]attendance.Attendance
}

func NewAttendanceRepo() attendance.Repository {
	return &attendanceRepo{
		byPair: make(map[attendanceKey]attendance.Attendance),
	}
}

// Create es el "create if absent": chequeo e insert dentro de la misma sección
// crítica, así dos intentos concurrentes por el mismo par colapsan en un solo
// registro (el segundo recibe ErrExists y el service lo resuelve idempotente).
func (r *attendanceRepo) Create(ctx context.Context, a attendance.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.PersonID == "" || a.EventID == "" {
		return errors.New("person id and event id required")
	}

	key := attendanceKey{personID: a.PersonID, eventID: a.EventID}
	if _, exists := r.byPair[key]; exists {
		return attendance.ErrExists
	}

	r.byPair[key] = a
	return nil
}

func (r *attendanceRepo) Get(ctx context.Context, personID, eventID string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byPair[attendanceKey{personID: personID, eventID: eventID}]
	if !ok {
		return attendance.Attendance{}, attendance.ErrNoRecord
	}
	return a, nil
}

func (r *attendanceRepo) ListByEvent(ctx context.Context, eventID string) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]attendance.Attendance, 0)
	for key, a := range r.byPair {
		if key.eventID == eventID {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].AttendedAt.Before(out[j].AttendedAt)
	})
	return out, nil
}

func (r *attendanceRepo) ListByPerson(ctx context.Context, personID string) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]attendance.Attendance, 0)
	for key, a := range r.byPair {
		if key.personID == personID {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].AttendedAt.Before(out[j].AttendedAt)
	})
	return out, nil
}
