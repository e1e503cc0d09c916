package events

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e Event) error
	Update(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	List(ctx context.Context, filter ListFilter) ([]Event, error)
	ListByChannel(ctx context.Context, channelTag string) ([]Event, error)
}

type ListFilter struct {
	ActiveOnly bool

	// StartsAfter: si viene, solo eventos con StartTime >= *StartsAfter,
	// ordenados por StartTime asc (feed de próximos eventos).
	StartsAfter *time.Time

	Limit int
}
