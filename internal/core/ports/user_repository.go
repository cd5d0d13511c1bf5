package ports

import (
	"context"

	"github.com/medrez/residency-api/internal/core/domain"
)

// UserRepository defines persistence for user credentials.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user has this email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts the user atomically and returns domain.ErrUserExists when
	// the username or email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A malformed hash is a mismatch.
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(userID string, role domain.Role) (string, error)
	// Verify returns domain.ErrInvalidToken for any forged, malformed or expired token.
	Verify(token string) (*domain.Claims, error)
}
