package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, "alice@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	identity, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if identity.UserID != 42 {
		t.Fatalf("unexpected user id: %d", identity.UserID)
	}
	if identity.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %q", identity.Email)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Issue(1, "bob@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.ttl = -time.Minute

	token, err := issuer.Issue(1, "bob@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	if issuer.ttl != 2*time.Hour {
		t.Fatalf("expected default ttl of 2h, got %v", issuer.ttl)
	}
}
