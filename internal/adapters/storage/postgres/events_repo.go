package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"event-attendance/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `
	id, title, description, start_time, end_time, channel_tag, active,
	created_at, updated_at`

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (
			id, title, description, start_time, end_time, channel_tag, active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		e.ID,
		e.Title,
		e.Description,
		e.StartTime,
		e.EndTime,
		e.ChannelTag,
		e.Active,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EventsRepo) Update(ctx context.Context, e events.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = $2, description = $3, start_time = $4, end_time = $5,
		    channel_tag = $6, active = $7, updated_at = $8
		WHERE id = $1
	`,
		e.ID,
		e.Title,
		e.Description,
		e.StartTime,
		e.EndTime,
		e.ChannelTag,
		e.Active,
		e.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT`+eventColumns+`
		FROM events
		WHERE id = $1
	`, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return events.Event{}, events.ErrNotFound
	}
	return e, err
}

func (r *EventsRepo) List(ctx context.Context, filter events.ListFilter) ([]events.Event, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT` + eventColumns + ` FROM events WHERE 1=1`)

	args := []any{}
	argN := 1

	if filter.ActiveOnly {
		sb.WriteString(" AND active = TRUE")
	}
	if filter.StartsAfter != nil {
		sb.WriteString(fmt.Sprintf(" AND start_time >= $%d", argN))
		args = append(args, *filter.StartsAfter)
		argN++
	}

	if filter.StartsAfter != nil {
		sb.WriteString(" ORDER BY start_time")
	} else {
		sb.WriteString(" ORDER BY created_at")
	}

	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, filter.Limit)
	}

	return r.queryEvents(ctx, sb.String(), args...)
}

func (r *EventsRepo) ListByChannel(ctx context.Context, channelTag string) ([]events.Event, error) {
	channelTag = strings.TrimSpace(channelTag)
	if channelTag == "" {
		return nil, nil
	}
	return r.queryEvents(ctx, `
		SELECT`+eventColumns+`
		FROM events
		WHERE channel_tag = $1 AND active = TRUE
		ORDER BY start_time
	`, channelTag)
}

func (r *EventsRepo) queryEvents(ctx context.Context, query string, args ...any) ([]events.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (events.Event, error) {
	var e events.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.StartTime,
		&e.EndTime,
		&e.ChannelTag,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}
