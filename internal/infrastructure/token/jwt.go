package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medrez/residency-api/internal/core/domain"
)

var errEmptySecret = errors.New("token: signing secret must not be empty")

// claims is the wire form of domain.Claims: {id, role, iat, exp}.
type claims struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 tokens with a process-wide secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a JWTIssuer.
type Option func(*JWTIssuer)

// WithClock overrides the time source used for iat/exp and validation.
func WithClock(now func() time.Time) Option {
	return func(i *JWTIssuer) { i.now = now }
}

// WithTTL overrides domain.TokenTTL.
func WithTTL(ttl time.Duration) Option {
	return func(i *JWTIssuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// NewJWTIssuer fails when secret is blank; there is no fallback key.
func NewJWTIssuer(secret string, opts ...Option) (*JWTIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errEmptySecret
	}
	i := &JWTIssuer{
		secret: []byte(secret),
		ttl:    domain.TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *JWTIssuer) Issue(userID string, role domain.Role) (string, error) {
	now := i.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID:   userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	return t.SignedString(i.secret)
}

func (i *JWTIssuer) Verify(tokenString string) (*domain.Claims, error) {
	var c claims
	tkn, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tkn.Valid || c.ID == "" {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.Claims{UserID: c.ID, Role: c.Role}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	out.ExpiresAt = c.ExpiresAt.Time
	return out, nil
}
