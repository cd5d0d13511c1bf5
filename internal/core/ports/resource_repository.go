package ports

import (
	"context"

	"github.com/medrez/residency-api/internal/core/domain"
)

// ResourceRepository defines persistence for the scheduling collections.
type ResourceRepository interface {
	// List returns up to limit resources of kind, newest first.
	List(ctx context.Context, kind domain.ResourceKind, limit int) ([]*domain.Resource, error)
	Get(ctx context.Context, kind domain.ResourceKind, id string) (*domain.Resource, error)
	// Create stores r and returns the generated id.
	Create(ctx context.Context, r *domain.Resource) (string, error)
	// Update merges r.Fields into an existing resource, keeping CreatedAt.
	Update(ctx context.Context, r *domain.Resource) (*domain.Resource, error)
	Delete(ctx context.Context, kind domain.ResourceKind, id string) error
}

// IdempotencyStore remembers which resource an Idempotency-Key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, kind domain.ResourceKind, key string) (id string, found bool, err error)
	Remember(ctx context.Context, kind domain.ResourceKind, key, id string) error
}
