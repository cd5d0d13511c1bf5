package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/medrez/residency-api/internal/core/domain"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client), mr
}

func TestIdempotencyStore_RememberAndLookup(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if _, found, err := store.Lookup(ctx, domain.KindShifts, "k1"); err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	if err := store.Remember(ctx, domain.KindShifts, "k1", "abc"); err != nil {
		t.Fatalf("remember: %v", err)
	}

	id, found, err := store.Lookup(ctx, domain.KindShifts, "k1")
	if err != nil || !found || id != "abc" {
		t.Fatalf("expected hit abc, got id=%q found=%v err=%v", id, found, err)
	}

	if ttl := mr.TTL("idem:shifts:k1"); ttl != idempotencyTTL {
		t.Fatalf("expected ttl %v, got %v", idempotencyTTL, ttl)
	}
}

func TestIdempotencyStore_FirstWriterWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_ = store.Remember(ctx, domain.KindResidents, "k", "first")
	_ = store.Remember(ctx, domain.KindResidents, "k", "second")

	id, _, _ := store.Lookup(ctx, domain.KindResidents, "k")
	if id != "first" {
		t.Fatalf("expected first, got %q", id)
	}
}

func TestIdempotencyStore_ScopedByKind(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_ = store.Remember(ctx, domain.KindResidents, "k", "r1")
	if _, found, _ := store.Lookup(ctx, domain.KindRotations, "k"); found {
		t.Fatalf("key must not cross resource kinds")
	}
}

func TestIdempotencyStore_Expires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_ = store.Remember(ctx, domain.KindSchedules, "k", "s1")
	mr.FastForward(idempotencyTTL + time.Second)

	if _, found, _ := store.Lookup(ctx, domain.KindSchedules, "k"); found {
		t.Fatalf("expected key to expire")
	}
}

func TestIdempotencyStore_Unreachable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	if _, _, err := store.Lookup(context.Background(), domain.KindShifts, "k"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

func TestConnect_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond}); err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestConnect_OK(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	_ = client.Close()
}
