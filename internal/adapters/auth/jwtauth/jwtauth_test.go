package jwtauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-attendance/internal/ports/auth"
)

func TestJWT_IssueVerify_RoundTrip(t *testing.T) {
	j := New(Config{Issuer: "test", Key: "k", TTL: time.Minute})

	token, expiresAt, err := j.Issue(auth.Claims{PersonID: "p-1", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("expected token and expiry")
	}

	got, err := j.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got.PersonID != "p-1" || got.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestJWT_Verify_RejectsWrongKey(t *testing.T) {
	a := New(Config{Issuer: "test", Key: "key-a", TTL: time.Minute})
	b := New(Config{Issuer: "test", Key: "key-b", TTL: time.Minute})

	token, _, err := a.Issue(auth.Claims{PersonID: "p-1"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := b.Verify(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWT_Verify_RejectsExpired(t *testing.T) {
	issuedAt := time.Date(2024, 6, 20, 19, 0, 0, 0, time.UTC)

	issuer := New(Config{
		Issuer: "test",
		Key:    "k",
		TTL:    time.Minute,
		Now:    func() time.Time { return issuedAt },
	})
	token, _, err := issuer.Issue(auth.Claims{PersonID: "p-1"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	verifier := New(Config{
		Issuer: "test",
		Key:    "k",
		Now:    func() time.Time { return issuedAt.Add(2 * time.Minute) },
	})
	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestJWT_Verify_RejectsEmpty(t *testing.T) {
	j := New(Config{})
	if _, err := j.Verify(context.Background(), "  "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}
