package ports

import (
	"context"

	"github.com/medrez/residency-api/internal/core/domain"
)

// CreateResourceInput carries a create request for any resource kind.
type CreateResourceInput struct {
	Kind           domain.ResourceKind
	Fields         domain.Document
	IdempotencyKey string
}

// CreateResourceResult is returned after a create.
type CreateResourceResult struct {
	Resource *domain.Resource
	// AlreadyExisted is true when the Idempotency-Key matched an earlier create.
	AlreadyExisted bool
}

// ResourceService defines the CRUD use cases behind the resource routers.
type ResourceService interface {
	List(ctx context.Context, kind domain.ResourceKind) ([]*domain.Resource, error)
	Get(ctx context.Context, kind domain.ResourceKind, id string) (*domain.Resource, error)
	Create(ctx context.Context, input CreateResourceInput) (*CreateResourceResult, error)
	Update(ctx context.Context, kind domain.ResourceKind, id string, fields domain.Document) (*domain.Resource, error)
	Delete(ctx context.Context, kind domain.ResourceKind, id string) error
}
