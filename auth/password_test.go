package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "s3cret-pass" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash format: %q", hash)
	}
	if !h.Verify("s3cret-pass", hash) {
		t.Fatalf("expected password to verify")
	}
	if h.Verify("wrong-pass", hash) {
		t.Fatalf("expected wrong password to fail")
	}
	if h.Verify("s3cret-pass", "not-a-hash") {
		t.Fatalf("expected malformed hash to fail")
	}
}

func TestDefaultCost(t *testing.T) {
	h := NewPasswordHasher(0)
	hash, err := h.Hash("abcdef")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost error: %v", err)
	}
	if cost != DefaultBcryptCost {
		t.Fatalf("cost = %d, want %d", cost, DefaultBcryptCost)
	}
}
