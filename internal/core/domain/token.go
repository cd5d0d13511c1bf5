package domain

import (
	"context"
	"errors"
	"time"
)

// TokenTTL is the lifetime of every issued session token.
const TokenTTL = time.Hour

var (
	ErrUnauthorized = errors.New("unauthorized, no token provided")
	ErrInvalidToken = errors.New("token is invalid")
	ErrForbidden    = errors.New("access forbidden")
)

// Claims is the verified identity decoded from a bearer token.
type Claims struct {
	UserID    string    `json:"id"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

type claimsKey struct{}

// ContextWithClaims returns a copy of ctx carrying c.
func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims attached by the auth middleware, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
