package persons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("person not found")
	ErrUnauthenticated = errors.New("invalid credentials")

	// Conflictos de linking / registro.
	ErrAlreadyLinked   = errors.New("person already has a login credential")
	ErrCredentialTaken = errors.New("email already in use")
	ErrExternalIDTaken = errors.New("external id already registered")
)

type Service struct {
	repo Repository
	now  func() time.Time

	// bcryptCost inyectable para que los tests no paguen el cost default.
	bcryptCost int
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:       repo,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register crea una persona por el path autenticado (cuenta web).
func (s *Service) Register(ctx context.Context, in RegisterInput) (Person, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	if email == "" || !strings.Contains(email, "@") {
		return Person{}, ErrInvalidInput
	}
	if name == "" || in.Password == "" {
		return Person{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return Person{}, err
	}

	now := s.now()
	p := Person{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Person{}, err
	}
	return p, nil
}

// Authenticate resuelve por credencial de login. Cualquier fallo (email
// desconocido, password incorrecto, credencial placeholder, persona inactiva)
// colapsa en ErrUnauthenticated para no filtrar cuál fue.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Person, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Person{}, ErrUnauthenticated
	}

	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return Person{}, ErrUnauthenticated
	}
	if !p.Active {
		return Person{}, ErrUnauthenticated
	}

	// El placeholder de auto-registro externo no tiene hash: nunca autentica.
	if !p.HasLoginCredential() {
		return Person{}, ErrUnauthenticated
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return Person{}, ErrUnauthenticated
	}
	return p, nil
}

type ResolveExternalInput struct {
	ExternalID  string
	DisplayName string
}

// ResolveExternal resuelve por identificador de plataforma externa. Si nadie
// tiene ese identificador, auto-registra una persona placeholder de forma
// transparente. Resolver dos veces el mismo identificador devuelve siempre la
// misma persona. Devuelve created=true solo en el primer contacto, y la lista
// de campos de perfil refrescados en contactos posteriores.
func (s *Service) ResolveExternal(ctx context.Context, in ResolveExternalInput) (Person, bool, []string, error) {
	externalID := strings.TrimSpace(in.ExternalID)
	displayName := strings.TrimSpace(in.DisplayName)
	if externalID == "" {
		return Person{}, false, nil, ErrInvalidInput
	}

	p, err := s.repo.GetByExternalID(ctx, externalID)
	if err == nil {
		var changes []string
		if displayName != "" && displayName != p.Name {
			p.Name = displayName
			p.UpdatedAt = s.now()
			if err := s.repo.Update(ctx, p); err != nil {
				return Person{}, false, nil, err
			}
			changes = append(changes, "name")
		}
		return p, false, changes, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Person{}, false, nil, err
	}

	if displayName == "" {
		displayName = "external-" + externalID
	}

	now := s.now()
	p = Person{
		ID:         uuid.NewString(),
		Email:      placeholderEmail(externalID),
		Name:       displayName,
		ExternalID: &externalID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.repo.Create(ctx, p)
	if errors.Is(err, ErrExternalIDTaken) || errors.Is(err, ErrCredentialTaken) {
		// Carrera con otro resolve concurrente: el constraint ganó, leemos al ganador.
		existing, gerr := s.repo.GetByExternalID(ctx, externalID)
		if gerr != nil {
			return Person{}, false, nil, gerr
		}
		return existing, false, nil, nil
	}
	if err != nil {
		return Person{}, false, nil, err
	}
	return p, true, nil, nil
}

// Link reemplaza la credencial placeholder de una persona auto-registrada por
// una credencial real ("reclamar" la cuenta desde la web).
func (s *Service) Link(ctx context.Context, personID, email, password string) (Person, error) {
	personID = strings.TrimSpace(personID)
	email = normalizeEmail(email)

	if personID == "" {
		return Person{}, ErrInvalidInput
	}
	if email == "" || !strings.Contains(email, "@") || password == "" {
		return Person{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, personID)
	if err != nil {
		return Person{}, err
	}
	if p.HasLoginCredential() {
		return Person{}, ErrAlreadyLinked
	}

	if other, err := s.repo.GetByEmail(ctx, email); err == nil && other.ID != p.ID {
		return Person{}, ErrCredentialTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return Person{}, err
	}

	p.Email = email
	p.PasswordHash = string(hash)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Person{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Person, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Person{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (Person, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return Person{}, ErrInvalidInput
	}
	return s.repo.GetByExternalID(ctx, externalID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Person, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name   *string
	Active *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Person, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Person{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Person{}, ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Person{}, err
	}
	return p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// placeholderEmail genera la credencial sintética del auto-registro externo.
// El dominio reservado garantiza que nunca colisione con un email real.
func placeholderEmail(externalID string) string {
	return externalID + "@external.invalid"
}
