package jwtauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"event-attendance/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrTokenInvalid = errors.New("invalid token")
)

// Config del emisor/verificador JWT. Key e Issuer normalmente vienen de env.
type Config struct {
	Issuer string
	Key    string
	TTL    time.Duration

	// now inyectable para tests de expiración.
	Now func() time.Time
}

// JWT implementa auth.TokenIssuer y auth.AuthVerifier con HS256.
type JWT struct {
	issuer string
	key    []byte
	ttl    time.Duration
	now    func() time.Time
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func New(cfg Config) *JWT {
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "event-attendance"
	}
	key := cfg.Key
	if key == "" {
		key = "dev-signing-secret-change"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &JWT{
		issuer: issuer,
		key:    []byte(key),
		ttl:    ttl,
		now:    now,
	}
}

func (j *JWT) Issue(c auth.Claims) (string, time.Time, error) {
	if strings.TrimSpace(c.PersonID) == "" {
		return "", time.Time{}, errors.New("person id required")
	}

	now := j.now()
	expiresAt := now.Add(j.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   c.PersonID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(j.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (j *JWT) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.key, nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return auth.Claims{}, ErrTokenInvalid
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || strings.TrimSpace(c.Subject) == "" {
		return auth.Claims{}, ErrTokenInvalid
	}

	return auth.Claims{PersonID: c.Subject, Email: c.Email}, nil
}
