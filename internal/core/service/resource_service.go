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

// maxListed caps a single List response.
const maxListed = 500

type ResourceService struct {
	repo ports.ResourceRepository
	idem ports.IdempotencyStore
	now  func() time.Time
	log  zerolog.Logger
}

// NewResourceService wires the CRUD use cases. idem may be nil, which
// disables Idempotency-Key replay.
func NewResourceService(repo ports.ResourceRepository, idem ports.IdempotencyStore, log zerolog.Logger) *ResourceService {
	return &ResourceService{repo: repo, idem: idem, now: time.Now, log: log}
}

func (s *ResourceService) List(ctx context.Context, kind domain.ResourceKind) ([]*domain.Resource, error) {
	if !kind.Valid() {
		return nil, domain.ErrUnknownResource
	}
	return s.repo.List(ctx, kind, maxListed)
}

func (s *ResourceService) Get(ctx context.Context, kind domain.ResourceKind, id string) (*domain.Resource, error) {
	if !kind.Valid() {
		return nil, domain.ErrUnknownResource
	}
	return s.repo.Get(ctx, kind, id)
}

// Create stores a new resource. When an idempotency key has already produced
// a resource that still exists, that resource is returned without side effects.
func (s *ResourceService) Create(ctx context.Context, in ports.CreateResourceInput) (*ports.CreateResourceResult, error) {
	if !in.Kind.Valid() {
		return nil, domain.ErrUnknownResource
	}
	fields, err := cleanFields(in.Fields)
	if err != nil {
		return nil, err
	}

	if existing := s.replay(ctx, in.Kind, in.IdempotencyKey); existing != nil {
		metrics.ResourceReplaysTotal.WithLabelValues(string(in.Kind)).Inc()
		s.log.Info().Str("resource", string(in.Kind)).Str("idempotency_key", in.IdempotencyKey).
			Str("id", existing.ID).Msg("idempotent replay")
		return &ports.CreateResourceResult{Resource: existing, AlreadyExisted: true}, nil
	}

	now := s.now().UTC()
	res := &domain.Resource{
		Kind:      in.Kind,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Create(ctx, res)
	if err != nil {
		s.log.Error().Err(err).Str("resource", string(in.Kind)).Msg("failed to create resource")
		return nil, err
	}
	res.ID = id
	metrics.ResourceWritesTotal.WithLabelValues(string(in.Kind), "create").Inc()

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, in.Kind, in.IdempotencyKey, id); err != nil {
			s.log.Warn().Err(err).Str("resource", string(in.Kind)).Msg("failed to store idempotency key")
		}
	}

	s.log.Info().Str("resource", string(in.Kind)).Str("id", id).Msg("resource created")
	return &ports.CreateResourceResult{Resource: res}, nil
}

func (s *ResourceService) Update(ctx context.Context, kind domain.ResourceKind, id string, fields domain.Document) (*domain.Resource, error) {
	if !kind.Valid() {
		return nil, domain.ErrUnknownResource
	}

	clean, err := cleanFields(fields)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Resource{
		ID:        id,
		Kind:      kind,
		Fields:    clean,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	metrics.ResourceWritesTotal.WithLabelValues(string(kind), "update").Inc()
	return updated, nil
}

func (s *ResourceService) Delete(ctx context.Context, kind domain.ResourceKind, id string) error {
	if !kind.Valid() {
		return domain.ErrUnknownResource
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	metrics.ResourceWritesTotal.WithLabelValues(string(kind), "delete").Inc()
	s.log.Info().Str("resource", string(kind)).Str("id", id).Msg("resource deleted")
	return nil
}

// cleanFields drops service-owned fields and validates what remains.
func cleanFields(fields domain.Document) (domain.Document, error) {
	clean := fields.Sanitize()
	if len(clean) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	if err := clean.CheckFieldNames(); err != nil {
		return nil, err
	}
	return clean, nil
}

// replay resolves a previously seen idempotency key. Store failures are
// logged and treated as a miss.
func (s *ResourceService) replay(ctx context.Context, kind domain.ResourceKind, key string) *domain.Resource {
	if key == "" || s.idem == nil {
		return nil
	}

	id, found, err := s.idem.Lookup(ctx, kind, key)
	if err != nil {
		s.log.Warn().Err(err).Str("resource", string(kind)).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}

	existing, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		if !errors.Is(err, domain.ErrResourceNotFound) {
			s.log.Warn().Err(fmt.Errorf("replay %s: %w", id, err)).Msg("idempotent replay failed")
		}
		return nil
	}
	return existing
}
