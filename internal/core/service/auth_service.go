package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrez/residency-api/internal/pkg/metrics"
	"github.com/medrez/residency-api/internal/core/domain"
	"github.com/medrez/residency-api/internal/core/ports"
)

// AuthService implements signup, login and admin user creation.
type AuthService struct {
	repo       ports.UserRepository
	hasher     ports.PasswordHasher
	tokens     ports.TokenIssuer
	allowAdmin bool
	now        func() time.Time
	log        zerolog.Logger
}

// AuthOption tweaks an AuthService.
type AuthOption func(*AuthService)

// WithAdminSignup lets a self-service signup request the admin role.
func WithAdminSignup(enabled bool) AuthOption {
	return func(s *AuthService) { s.allowAdmin = enabled }
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a new account and returns a session token for it.
// The email lookup is a fast path; the store's unique indexes decide conflicts.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	_, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		metrics.SignupsTotal.WithLabelValues("exists").Inc()
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("signup: %w", err)
	}

	role := domain.ResolveSignupRole(in.Role, s.allowAdmin)
	if in.Role != "" && string(role) != in.Role {
		s.log.Warn().Str("email", in.Email).Str("requested_role", in.Role).Str("role", string(role)).
			Msg("signup role not granted")
	}

	user, err := s.create(ctx, in.Username, in.Email, in.Password, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.SignupsTotal.WithLabelValues("exists").Inc()
		} else {
			metrics.SignupsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("signup: issue token: %w", err)
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user signed up")

	return &ports.AuthResult{Token: token, User: user.Public()}, nil
}

// Login checks credentials. Unknown email and wrong password are reported
// identically as domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return &ports.AuthResult{Token: token, User: user.Public()}, nil
}

// CreateUser provisions an account with an explicit role on behalf of an admin.
func (s *AuthService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.PublicUser, error) {
	if !in.Role.Valid() {
		in.Role = domain.RoleUser
	}

	user, err := s.create(ctx, in.Username, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user provisioned")
	pub := user.Public()
	return &pub, nil
}

func (s *AuthService) create(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}
