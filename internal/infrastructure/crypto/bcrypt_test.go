package crypto

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/medrez/residency-api/internal/core/domain"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "p1" {
		t.Fatalf("hash looks like plaintext: %q", hash)
	}
	if !h.Verify("p1", hash) {
		t.Fatalf("expected password to verify")
	}
	if h.Verify("p2", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestBcryptHasher_FreshSaltPerCall(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatalf("expected different hashes for the same input")
	}
	if !h.Verify("same", a) || !h.Verify("same", b) {
		t.Fatalf("both hashes must verify")
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, bad := range []string{"", "not-a-hash", "$2a$10$short"} {
		if h.Verify("anything", bad) {
			t.Fatalf("malformed hash %q must not verify", bad)
		}
	}
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	if got := NewBcryptHasher(0).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := NewBcryptHasher(bcrypt.MaxCost + 1).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
}

func TestBcryptHasher_TooLongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("x", 73)); !errors.Is(err, domain.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	// 40 runes, 80 bytes.
	if _, err := h.Hash(strings.Repeat("é", 40)); !errors.Is(err, domain.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong for multibyte input, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("é", 36)); err != nil {
		t.Fatalf("72-byte password must hash: %v", err)
	}
}
