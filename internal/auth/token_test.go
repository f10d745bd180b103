package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, now *time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec("test-secret", 15*time.Minute, 7*24*time.Hour,
		WithClock(func() time.Time { return *now }))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func TestNewTokenCodecRejectsBadConfig(t *testing.T) {
	if _, err := NewTokenCodec("", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
	if _, err := NewTokenCodec("   ", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for whitespace secret")
	}
	if _, err := NewTokenCodec("s", 0, time.Hour); err == nil {
		t.Fatal("expected error for zero access ttl")
	}
	if _, err := NewTokenCodec("s", time.Minute, -time.Hour); err == nil {
		t.Fatal("expected error for negative refresh ttl")
	}
}

func TestMintVerifyRoundtrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	token, expiresAt, err := codec.MintAccess("alice@example.com")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	if got, want := expiresAt, now.Add(15*time.Minute); !got.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", got, want)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "alice@example.com" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		t.Fatalf("expiry %v not after issued-at %v", claims.ExpiresAt, claims.IssuedAt)
	}
	if codec.IsExpired(token) {
		t.Fatal("fresh token reported expired")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	token, _, err := codec.MintAccess("alice@example.com")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	now = now.Add(16 * time.Minute)
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !codec.IsExpired(token) {
		t.Fatal("expired token not reported expired")
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	token, _, err := codec.MintAccess("alice@example.com")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	// flip one character in the signature segment
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyGarbageInput(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, &now)

	for _, in := range []string{"", "  ", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := codec.Verify(in); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", in, err)
		}
	}
	if !codec.IsExpired("garbage") {
		t.Fatal("unverifiable token should report expired")
	}
}

func TestMintProtectsRegisteredClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	token, err := codec.Mint("alice@example.com", map[string]any{
		"sub":    "mallory@example.com",
		"exp":    0,
		"tenant": "main",
	}, time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "alice@example.com" {
		t.Fatalf("subject was overridden: %s", claims.Subject)
	}
	if claims.Extra["tenant"] != "main" {
		t.Fatalf("extra claim lost: %v", claims.Extra)
	}
}

func TestMintRejectsBlankSubject(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, &now)
	if _, err := codec.Mint("  ", nil, time.Hour); err == nil {
		t.Fatal("expected error for blank subject")
	}
}
