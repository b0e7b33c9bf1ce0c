package auth

import (
	"errors"
	"testing"
	"time"
)

func newJWTer(now *time.Time) *JWTer {
	return &JWTer{
		Secret:       []byte("test-secret"),
		Issuer:       "resident-portal",
		TTL:          time.Hour,
		RefreshGrace: 24 * time.Hour,
		Now:          func() time.Time { return *now },
	}
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	j := newJWTer(&now)
	tok, exp, err := j.Issue("user-1", "a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.After(now) {
		t.Fatalf("expiry not in the future")
	}
	c, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UID != "user-1" || c.Email != "a@b.com" {
		t.Fatalf("unexpected claims %+v", c)
	}
}

func TestExpiredTokenIsClassifiedExpired(t *testing.T) {
	now := time.Now()
	j := newJWTer(&now)
	tok, _, _ := j.Issue("user-1", "a@b.com")

	now = now.Add(2 * time.Hour)
	if _, err := j.Parse(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	now := time.Now()
	j := newJWTer(&now)
	tok, _, _ := j.Issue("user-1", "a@b.com")

	other := newJWTer(&now)
	other.Secret = []byte("another-secret")
	if _, err := other.Parse(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := j.Parse("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}
}

func TestRefreshWindow(t *testing.T) {
	now := time.Now()
	j := newJWTer(&now)
	tok, _, _ := j.Issue("user-1", "a@b.com")

	now = now.Add(3 * time.Hour)
	c, err := j.ParseForRefresh(tok)
	if err != nil || c.UID != "user-1" {
		t.Fatalf("expected refreshable token, got %v", err)
	}

	now = now.Add(48 * time.Hour)
	if _, err := j.ParseForRefresh(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired beyond grace, got %v", err)
	}
}
