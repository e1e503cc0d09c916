package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"event-attendance/internal/domain/attendance"
)

type AttendanceRepo struct {
	db *sql.DB
}

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo {
	return &AttendanceRepo{db: db}
}

// Create es el insert condicional atómico: el PK compuesto (person_id,
// event_id) resuelve la carrera entre intentos concurrentes. DO NOTHING +
// RowsAffected == 0 => el par ya existía, y el service va a buscar el
// registro original (catch-and-fetch-existing).
func (r *AttendanceRepo) Create(ctx context.Context, a attendance.Attendance) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (person_id, event_id, attended_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (person_id, event_id) DO NOTHING
	`, a.PersonID, a.EventID, a.AttendedAt)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return attendance.ErrExists
	}
	return nil
}

func (r *AttendanceRepo) Get(ctx context.Context, personID, eventID string) (attendance.Attendance, error) {
	personID = strings.TrimSpace(personID)
	eventID = strings.TrimSpace(eventID)
	if personID == "" || eventID == "" {
		return attendance.Attendance{}, attendance.ErrNoRecord
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT person_id, event_id, attended_at
		FROM attendance
		WHERE person_id = $1 AND event_id = $2
	`, personID, eventID)

	var a attendance.Attendance
	if err := row.Scan(&a.PersonID, &a.EventID, &a.AttendedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrNoRecord
		}
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (r *AttendanceRepo) ListByEvent(ctx context.Context, eventID string) ([]attendance.Attendance, error) {
	return r.list(ctx, "event_id = $1", strings.TrimSpace(eventID))
}

func (r *AttendanceRepo) ListByPerson(ctx context.Context, personID string) ([]attendance.Attendance, error) {
	return r.list(ctx, "person_id = $1", strings.TrimSpace(personID))
}

func (r *AttendanceRepo) list(ctx context.Context, where, arg string) ([]attendance.Attendance, error) {
	if arg == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT person_id, event_id, attended_at
		FROM attendance
		WHERE `+where+`
		ORDER BY attended_at
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]attendance.Attendance, 0)
	for rows.Next() {
		var a attendance.Attendance
		if err := rows.Scan(&a.PersonID, &a.EventID, &a.AttendedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
