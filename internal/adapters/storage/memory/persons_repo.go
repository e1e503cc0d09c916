package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"event-attendance/internal/domain/persons"
)

type personRepo struct {
	mu   sync.RWMutex
	byID map[string]persons.Person
}

func NewPersonRepo() persons.Repository {
	return &personRepo{
		byID: make(map[string]persons.Person),
	}
}

func (r *personRepo) Create(ctx context.Context, p persons.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("person id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("person already exists")
	}

	// Unicidad de email y external id bajo el mismo lock: equivale al
	// constraint del storage durable.
	for _, other := range r.byID {
		if other.Email == p.Email {
			return persons.ErrCredentialTaken
		}
		if p.ExternalID != nil && other.ExternalID != nil && *other.ExternalID == *p.ExternalID {
			return persons.ErrExternalIDTaken
		}
	}

	r.byID[p.ID] = p
	return nil
}

func (r *personRepo) Update(ctx context.Context, p persons.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return persons.ErrNotFound
	}
	for _, other := range r.byID {
		if other.ID == p.ID {
			continue
		}
		if other.Email == p.Email {
			return persons.ErrCredentialTaken
		}
	}

	r.byID[p.ID] = p
	return nil
}

func (r *personRepo) GetByID(ctx context.Context, id string) (persons.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return persons.Person{}, persons.ErrNotFound
	}
	return p, nil
}

func (r *personRepo) GetByEmail(ctx context.Context, email string) (persons.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.Email == email {
			return p, nil
		}
	}
	return persons.Person{}, persons.ErrNotFound
}

func (r *personRepo) GetByExternalID(ctx context.Context, externalID string) (persons.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.ExternalID != nil && *p.ExternalID == externalID {
			return p, nil
		}
	}
	return persons.Person{}, persons.ErrNotFound
}

func (r *personRepo) List(ctx context.Context, limit, offset int) ([]persons.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]persons.Person, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []persons.Person{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
