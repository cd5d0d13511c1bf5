package ports

import (
	"context"

	"github.com/medrez/residency-api/internal/core/domain"
)

// SignupInput carries a self-service registration request.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// CreateUserInput carries an admin-initiated account creation.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	Token string
	User  domain.PublicUser
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.PublicUser, error)
}
