package persons

import "context"

type Repository interface {
	// Create debe rechazar emails y external ids duplicados con
	// ErrCredentialTaken / ErrExternalIDTaken (constraint de unicidad en el
	// storage, no check-then-insert: cierra la carrera de auto-registro).
	Create(ctx context.Context, p Person) error
	Update(ctx context.Context, p Person) error
	GetByID(ctx context.Context, id string) (Person, error)
	GetByEmail(ctx context.Context, email string) (Person, error)
	GetByExternalID(ctx context.Context, externalID string) (Person, error)
	List(ctx context.Context, limit, offset int) ([]Person, error)
}
