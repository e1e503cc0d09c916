package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"event-attendance/internal/domain/persons"
)

type PersonsRepo struct {
	db *sql.DB
}

func NewPersonsRepo(db *sql.DB) *PersonsRepo {
	return &PersonsRepo{db: db}
}

func (r *PersonsRepo) Create(ctx context.Context, p persons.Person) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO persons (
			id, email, name, password_hash, external_id, active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		p.ID,
		p.Email,
		p.Name,
		p.PasswordHash,
		p.ExternalID,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapPersonConflict(err)
}

func (r *PersonsRepo) Update(ctx context.Context, p persons.Person) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE persons
		SET email = $2, name = $3, password_hash = $4, external_id = $5,
		    active = $6, updated_at = $7
		WHERE id = $1
	`,
		p.ID,
		p.Email,
		p.Name,
		p.PasswordHash,
		p.ExternalID,
		p.Active,
		p.UpdatedAt,
	)
	if err != nil {
		return mapPersonConflict(err)
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return persons.ErrNotFound
	}
	return nil
}

func (r *PersonsRepo) GetByID(ctx context.Context, id string) (persons.Person, error) {
	return r.getBy(ctx, "id = $1", strings.TrimSpace(id))
}

func (r *PersonsRepo) GetByEmail(ctx context.Context, email string) (persons.Person, error) {
	return r.getBy(ctx, "email = $1", strings.TrimSpace(email))
}

func (r *PersonsRepo) GetByExternalID(ctx context.Context, externalID string) (persons.Person, error) {
	return r.getBy(ctx, "external_id = $1", strings.TrimSpace(externalID))
}

func (r *PersonsRepo) getBy(ctx context.Context, where, arg string) (persons.Person, error) {
	if arg == "" {
		return persons.Person{}, persons.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, external_id, active,
		       created_at, updated_at
		FROM persons
		WHERE `+where, arg)

	var p persons.Person
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&p.PasswordHash,
		&p.ExternalID,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persons.Person{}, persons.ErrNotFound
		}
		return persons.Person{}, err
	}
	return p, nil
}

func (r *PersonsRepo) List(ctx context.Context, limit, offset int) ([]persons.Person, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, password_hash, external_id, active,
		       created_at, updated_at
		FROM persons
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]persons.Person, 0)
	for rows.Next() {
		var p persons.Person
		if err := rows.Scan(
			&p.ID,
			&p.Email,
			&p.Name,
			&p.PasswordHash,
			&p.ExternalID,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func mapPersonConflict(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case "persons_external_id_key":
			return persons.ErrExternalIDTaken
		default:
			return persons.ErrCredentialTaken
		}
	}
	return err
}
