package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewHMACStrategy_DefaultTTL(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy == nil {
		t.Fatal("expected strategy instance")
	}
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
	if strategy.now == nil {
		t.Fatal("expected default clock")
	}
}

func TestNewHMACStrategy_CustomTTL(t *testing.T) {
	ttl := 2 * time.Hour
	strategy := NewHMACStrategy("secret", Options{TTL: ttl})
	if strategy.ttl != ttl {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestHMACStrategy_IssueAndParse(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(42)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if !strings.HasPrefix(token, "v1.") || strings.Count(token, ".") != 2 {
		t.Fatalf("unexpected token layout: %q", token)
	}
	customerID, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if customerID != 42 {
		t.Fatalf("unexpected customer id: %d", customerID)
	}
}

func TestHMACStrategy_RejectsMalformed(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	for _, token := range []string{"", "garbage", "v1.only", "v2.a.b", "v1.a.b.c"} {
		if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestHMACStrategy_ParseInvalidSignature(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[2] = "tampered"
	if _, err := strategy.ParseToken(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	other := NewHMACStrategy("other-secret", Options{TTL: time.Minute})
	if _, err := other.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token from another secret to be rejected, got %v", err)
	}
}

func TestHMACStrategy_ParseForgedClaims(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})

	body := tokenVersion + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"abc"}`))
	if _, err := strategy.ParseToken(body + "." + strategy.sign(body)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad claims, got %v", err)
	}

	body = tokenVersion + ".%%%"
	if _, err := strategy.ParseToken(body + "." + strategy.sign(body)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad encoding, got %v", err)
	}

	body = tokenVersion + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":0,"exp":9999999999}`))
	if _, err := strategy.ParseToken(body + "." + strategy.sign(body)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}

func TestHMACStrategy_ParseExpired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewHMACStrategy("secret", Options{TTL: time.Hour, Now: fixedClock(issued)})
	token, err := issuer.IssueToken(10)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	stillValid := NewHMACStrategy("secret", Options{Now: fixedClock(issued.Add(59 * time.Minute))})
	if _, err := stillValid.ParseToken(token); err != nil {
		t.Fatalf("expected token to be valid, got %v", err)
	}

	expired := NewHMACStrategy("secret", Options{Now: fixedClock(issued.Add(time.Hour))})
	if _, err := expired.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACStrategy_Name(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy.Name() != "hmac" {
		t.Fatalf("unexpected name: %s", strategy.Name())
	}
}

func TestAdminGuard(t *testing.T) {
	disabled := NewAdminGuard("")
	if disabled.Enabled() || disabled.Allow("") || disabled.Allow("anything") {
		t.Fatal("empty admin token must reject everything")
	}

	guard := NewAdminGuard("root-token")
	if !guard.Enabled() {
		t.Fatal("expected guard to be enabled")
	}
	if !guard.Allow("root-token") {
		t.Fatal("expected matching token to be allowed")
	}
	if guard.Allow("root") || guard.Allow("") {
		t.Fatal("unexpected token accepted")
	}
}
