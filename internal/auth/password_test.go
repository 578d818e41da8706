package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h, err := NewHasher(MinPasswordCost, 1)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	hash, err := h.HashPassword(context.Background(), "s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if cost, err := bcrypt.Cost([]byte(hash)); err != nil || cost != MinPasswordCost {
		t.Fatalf("expected cost %d, got %d (%v)", MinPasswordCost, cost, err)
	}
	if err := h.VerifyPassword(context.Background(), hash, "s3cret-pass"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := h.VerifyPassword(context.Background(), hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestHasherRejectsLowCost(t *testing.T) {
	if _, err := NewHasher(bcrypt.DefaultCost, 0); err == nil {
		t.Fatal("expected cost below 12 to be rejected")
	}
}

func TestHasherHonoursCancelledContext(t *testing.T) {
	h, err := NewHasher(MinPasswordCost, 1)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	// hold the only slot so the next caller has to wait
	if err := h.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.HashPassword(ctx, "pw"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRefreshTokenHash(t *testing.T) {
	token := strings.Repeat("x", 300)
	hash := HashRefreshToken(token)
	if len(hash) != 64 {
		t.Fatalf("expected hex sha256, got %q", hash)
	}
	if !MatchRefreshToken(hash, token) {
		t.Fatal("expected hash to match its token")
	}
	if MatchRefreshToken(hash, token+"y") || MatchRefreshToken("short", token) {
		t.Fatal("unexpected match")
	}
}

func TestRevocationKeyIsStable(t *testing.T) {
	if RevocationKey("abc") != RevocationKey("abc") {
		t.Fatal("expected deterministic key")
	}
	if RevocationKey("abc") == RevocationKey("abd") {
		t.Fatal("expected distinct keys")
	}
}
