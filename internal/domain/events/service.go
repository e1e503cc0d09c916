package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidWindow = errors.New("end time must be after start time")
	ErrNotFound      = errors.New("event not found")

	// Para el shortcut "asistir al evento en curso" (un solo evento activo).
	ErrNoCurrentEvent        = errors.New("no event is currently active")
	ErrAmbiguousCurrentEvent = errors.New("more than one event is currently active")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	ChannelTag  string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Event{}, ErrInvalidInput
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return Event{}, ErrInvalidInput
	}
	if !in.EndTime.After(in.StartTime) {
		return Event{}, ErrInvalidWindow
	}

	now := s.now()
	e := Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		ChannelTag:  strings.TrimSpace(in.ChannelTag),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	ChannelTag  *string
	Active      *bool
}

// Update valida la ventana resultante ANTES de persistir: si end <= start
// se rechaza todo el update y el evento queda como estaba.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return Event{}, ErrInvalidInput
		}
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if in.StartTime != nil {
		e.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		e.EndTime = *in.EndTime
	}
	if in.ChannelTag != nil {
		e.ChannelTag = strings.TrimSpace(*in.ChannelTag)
	}
	if in.Active != nil {
		e.Active = *in.Active
	}

	if !e.EndTime.After(e.StartTime) {
		return Event{}, ErrInvalidWindow
	}

	e.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit int) ([]Event, error) {
	return s.repo.List(ctx, ListFilter{ActiveOnly: activeOnly, Limit: limit})
}

// ListAttendable devuelve los eventos activos cuya ventana contiene a "now".
// El filtro de fase se aplica con el Status Oracle sobre cada candidato al
// momento de la consulta; nunca sobre un status almacenado.
func (s *Service) ListAttendable(ctx context.Context, now time.Time) ([]Event, error) {
	candidates, err := s.repo.List(ctx, ListFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(candidates))
	for _, e := range candidates {
		if e.StatusOf(now).CanAttend {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListUpcoming devuelve los próximos eventos activos (start >= now), orden por start asc.
func (s *Service) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.List(ctx, ListFilter{ActiveOnly: true, StartsAfter: &now, Limit: limit})
}

func (s *Service) ListByChannel(ctx context.Context, channelTag string) ([]Event, error) {
	channelTag = strings.TrimSpace(channelTag)
	if channelTag == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByChannel(ctx, channelTag)
}

// StatusOf devuelve el evento junto con su status derivado en "now".
func (s *Service) StatusOf(ctx context.Context, id string, now time.Time) (Event, Status, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return Event{}, Status{}, err
	}
	return e, e.StatusOf(now), nil
}

// Current devuelve el único evento activo en curso. Si no hay ninguno o hay
// más de uno, el shortcut no aplica y se devuelve el sentinel correspondiente.
func (s *Service) Current(ctx context.Context, now time.Time) (Event, error) {
	ongoing, err := s.ListAttendable(ctx, now)
	if err != nil {
		return Event{}, err
	}
	switch len(ongoing) {
	case 0:
		return Event{}, ErrNoCurrentEvent
	case 1:
		return ongoing[0], nil
	default:
		return Event{}, ErrAmbiguousCurrentEvent
	}
}

// Deactivate es el soft-delete del evento (nunca borrado físico).
func (s *Service) Deactivate(ctx context.Context, id string) (Event, error) {
	off := false
	return s.Update(ctx, id, UpdateInput{Active: &off})
}
