package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medrez/residency-api/internal/core/domain"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore maps an Idempotency-Key to the resource it created.
// Key format: idem:<kind>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Lookup returns the resource id remembered for key.
func (s *IdempotencyStore) Lookup(ctx context.Context, kind domain.ResourceKind, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.key(kind, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember stores id for key unless another request already claimed it.
func (s *IdempotencyStore) Remember(ctx context.Context, kind domain.ResourceKind, key, id string) error {
	if err := s.client.SetNX(ctx, s.key(kind, key), id, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(kind domain.ResourceKind, key string) string {
	return fmt.Sprintf("idem:%s:%s", kind, key)
}
