package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newHSManager(t *testing.T, lifetime time.Duration) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		Lifetime:      lifetime,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:        "padron",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestIssueParseRoundTrip(t *testing.T) {
	m := newHSManager(t, time.Hour)
	now := time.Unix(1700000000, 0)

	tok, err := m.Issue("staff-7", 3, now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Subject != "staff-7" {
		t.Fatalf("subject = %q, want staff-7", claims.Subject)
	}
	if claims.Epoch != 3 {
		t.Fatalf("epoch = %d, want 3", claims.Epoch)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("iat = %v, want %v", claims.IssuedAt.Time, now)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatalf("exp = %v, want %v", claims.ExpiresAt.Time, now.Add(time.Hour))
	}
}

func TestParseDoesNotEvaluateExpiry(t *testing.T) {
	m := newHSManager(t, time.Minute)
	issued := time.Now().Add(-2 * time.Hour)

	tok, err := m.Issue("staff-7", 1, issued)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Long past its lifetime, but structurally intact: Parse must succeed.
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse of expired credential failed: %v", err)
	}
	if claims.Subject != "staff-7" {
		t.Fatalf("subject = %q, want staff-7", claims.Subject)
	}
}

func TestParseRejectsTamperedSignature(t *testing.T) {
	m := newHSManager(t, time.Hour)

	tok, err := m.Issue("staff-7", 1, time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	corrupted := tok[:len(tok)-2] + "xx"
	if _, err := m.Parse(corrupted); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newHSManager(t, time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := m.Parse(input); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Parse(%q): expected ErrMalformed, got %v", input, err)
		}
	}
}

func TestParseRejectsMissingSubject(t *testing.T) {
	m := newHSManager(t, time.Hour)

	claims := Claims{
		Epoch: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "padron",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := m.Parse(signed); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for missing subject, got %v", err)
	}
}

func TestParseRejectsForeignIssuer(t *testing.T) {
	m := newHSManager(t, time.Hour)

	other, err := NewManager(Config{
		Lifetime:      time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:        "someone-else",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	tok, err := other.Issue("staff-7", 1, time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := m.Parse(tok); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for issuer mismatch, got %v", err)
	}
}

func TestExtractSubject(t *testing.T) {
	m := newHSManager(t, time.Hour)

	tok, err := m.Issue("staff-9", 5, time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	subject, err := m.ExtractSubject(tok)
	if err != nil {
		t.Fatalf("ExtractSubject failed: %v", err)
	}
	if subject != "staff-9" {
		t.Fatalf("subject = %q, want staff-9", subject)
	}

	if _, err := m.ExtractSubject("broken"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}

	m, err := NewManager(Config{
		Lifetime:      time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	tok, err := m.Issue("staff-1", 2, time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Subject != "staff-1" || claims.Epoch != 2 {
		t.Fatalf("claims = %q/%d, want staff-1/2", claims.Subject, claims.Epoch)
	}
}

func TestHS256TokenRejectedByEd25519Manager(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	edManager, err := NewManager(Config{
		Lifetime:      time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	hs := newHSManager(t, time.Hour)
	tok, err := hs.Issue("staff-1", 1, time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := edManager.Parse(tok); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for algorithm confusion, got %v", err)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero lifetime", Config{SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"hs256 without key", Config{Lifetime: time.Hour, SigningMethod: MethodHS256}},
		{"ed25519 without public key", Config{Lifetime: time.Hour, SigningMethod: MethodEd25519}},
		{"unknown method", Config{Lifetime: time.Hour, SigningMethod: "rs256", PrivateKey: []byte("k")}},
		{"ed25519 bad public key", Config{
			Lifetime:      time.Hour,
			SigningMethod: MethodEd25519,
			PublicKey:     []byte(strings.Repeat("x", 5)),
		}},
	}

	for _, tc := range cases {
		if _, err := NewManager(tc.cfg); err == nil {
			t.Fatalf("%s: expected error, got nil", tc.name)
		}
	}
}
