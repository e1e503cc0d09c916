package persons

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Person
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Person{}}
}

func (r *testRepo) Create(ctx context.Context, p Person) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	for _, other := range r.byID {
		if other.Email == p.Email {
			return ErrCredentialTaken
		}
		if other.ExternalID != nil && p.ExternalID != nil && *other.ExternalID == *p.ExternalID {
			return ErrExternalIDTaken
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Person) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Person, error) {
	p, ok := r.byID[id]
	if !ok {
		return Person{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (Person, error) {
	for _, p := range r.byID {
		if p.Email == email {
			return p, nil
		}
	}
	return Person{}, ErrNotFound
}

func (r *testRepo) GetByExternalID(ctx context.Context, externalID string) (Person, error) {
	for _, p := range r.byID {
		if p.ExternalID != nil && *p.ExternalID == externalID {
			return p, nil
		}
	}
	return Person{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context, limit, offset int) ([]Person, error) {
	out := make([]Person, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Person{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	svc.bcryptCost = 4 // mínimo permitido; el default hace los tests lentos
	return svc
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_And_Authenticate(t *testing.T) {
	svc := newTestService(newTestRepo())

	p, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Ana@Example.com",
		Name:     "Ana",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if p.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %s", p.Email)
	}
	if !p.HasLoginCredential() {
		t.Fatalf("registered person must have a real credential")
	}

	got, err := svc.Authenticate(context.Background(), "ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("expected same person, got %s vs %s", got.ID, p.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "ana@example.com", "wrong"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for bad password, got %v", err)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestService(newTestRepo())

	in := RegisterInput{Email: "ana@example.com", Name: "Ana", Password: "s3cret"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register #1 error: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrCredentialTaken) {
		t.Fatalf("expected ErrCredentialTaken, got %v", err)
	}
}

func TestService_ResolveExternal_AutoRegistersOnce(t *testing.T) {
	svc := newTestService(newTestRepo())

	p1, created, _, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{
		ExternalID:  "ext-42",
		DisplayName: "Ana",
	})
	if err != nil {
		t.Fatalf("ResolveExternal #1 error: %v", err)
	}
	if !created {
		t.Fatalf("first contact must auto-register")
	}
	if p1.ExternalID == nil || *p1.ExternalID != "ext-42" {
		t.Fatalf("expected external id stored, got %v", p1.ExternalID)
	}

	p2, created, changes, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{
		ExternalID:  "ext-42",
		DisplayName: "Ana",
	})
	if err != nil {
		t.Fatalf("ResolveExternal #2 error: %v", err)
	}
	if created {
		t.Fatalf("repeat contact must not create")
	}
	if p2.ID != p1.ID {
		t.Fatalf("same external id must resolve to same person, got %s vs %s", p2.ID, p1.ID)
	}
	if len(changes) != 0 {
		t.Fatalf("same display name must not report changes, got %v", changes)
	}
}

func TestService_ResolveExternal_DistinctIDs_DistinctPersons(t *testing.T) {
	svc := newTestService(newTestRepo())

	p1, _, _, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{ExternalID: "ext-1"})
	if err != nil {
		t.Fatalf("ResolveExternal ext-1 error: %v", err)
	}
	p2, _, _, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{ExternalID: "ext-2"})
	if err != nil {
		t.Fatalf("ResolveExternal ext-2 error: %v", err)
	}
	if p1.ID == p2.ID {
		t.Fatalf("distinct external ids must not collapse into one person")
	}
}

func TestService_ResolveExternal_RefreshesDisplayName(t *testing.T) {
	svc := newTestService(newTestRepo())

	if _, _, _, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{
		ExternalID:  "ext-42",
		DisplayName: "Ana",
	}); err != nil {
		t.Fatalf("ResolveExternal #1 error: %v", err)
	}

	p, created, changes, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{
		ExternalID:  "ext-42",
		DisplayName: "Ana María",
	})
	if err != nil {
		t.Fatalf("ResolveExternal #2 error: %v", err)
	}
	if created {
		t.Fatalf("rename must not create")
	}
	if p.Name != "Ana María" {
		t.Fatalf("expected refreshed name, got %s", p.Name)
	}
	if len(changes) != 1 || changes[0] != "name" {
		t.Fatalf("expected changes=[name], got %v", changes)
	}
}

func TestService_PlaceholderCredential_NeverAuthenticates(t *testing.T) {
	svc := newTestService(newTestRepo())

	p, _, _, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{ExternalID: "ext-42"})
	if err != nil {
		t.Fatalf("ResolveExternal error: %v", err)
	}
	if p.HasLoginCredential() {
		t.Fatalf("auto-registered person must carry a placeholder credential")
	}

	// ni con password vacío ni con el email placeholder literal
	if _, err := svc.Authenticate(context.Background(), p.Email, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), p.Email, "anything"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for placeholder credential, got %v", err)
	}
}

func TestService_Link_ClaimsPlaceholderAccount(t *testing.T) {
	svc := newTestService(newTestRepo())

	p, _, _, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{
		ExternalID:  "ext-42",
		DisplayName: "Ana",
	})
	if err != nil {
		t.Fatalf("ResolveExternal error: %v", err)
	}

	linked, err := svc.Link(context.Background(), p.ID, "ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Link error: %v", err)
	}
	if !linked.HasLoginCredential() {
		t.Fatalf("linked person must have a real credential")
	}
	if linked.ExternalID == nil || *linked.ExternalID != "ext-42" {
		t.Fatalf("link must preserve the external identity")
	}

	// después del link la cuenta autentica normal
	got, err := svc.Authenticate(context.Background(), "ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate after link error: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("expected same person after link")
	}

	// re-link sobre credencial ya real => conflicto
	if _, err := svc.Link(context.Background(), p.ID, "otra@example.com", "x"); !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
}

func TestService_Link_RejectsEmailInUse(t *testing.T) {
	svc := newTestService(newTestRepo())

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Name: "Ana", Password: "s3cret",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	p, _, _, err := svc.ResolveExternal(context.Background(), ResolveExternalInput{ExternalID: "ext-42"})
	if err != nil {
		t.Fatalf("ResolveExternal error: %v", err)
	}

	if _, err := svc.Link(context.Background(), p.ID, "ana@example.com", "x"); !errors.Is(err, ErrCredentialTaken) {
		t.Fatalf("expected ErrCredentialTaken, got %v", err)
	}
}

func TestService_Authenticate_RejectsInactive(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	p, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Name: "Ana", Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	off := false
	if _, err := svc.Update(context.Background(), p.ID, UpdateInput{Active: &off}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "ana@example.com", "s3cret"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for inactive person, got %v", err)
	}
}

func TestService_Update_BumpsUpdatedAt(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	now1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(5 * time.Minute)

	svc.now = func() time.Time { return now1 }
	p, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Name: "Ana", Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	name := "Ana María"
	got, err := svc.Update(context.Background(), p.ID, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !got.UpdatedAt.Equal(now2) || !got.CreatedAt.Equal(now1) {
		t.Fatalf("expected UpdatedAt=now2 CreatedAt=now1, got %s / %s", got.UpdatedAt, got.CreatedAt)
	}
}
