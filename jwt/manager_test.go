package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"
)

func newEdManager(t *testing.T, mutate func(*Config)) *Manager {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	cfg := Config{
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "idp.test",
		TokenTTL:      time.Minute,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueExtractRoundTrip(t *testing.T) {
	m := newEdManager(t, nil)

	raw := []any{
		map[string]any{"resource": "Leads", "actions": []any{"show", "own"}},
	}

	token, err := m.Issue("u1", raw)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ext, err := m.Extract(token)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ext.SubjectID != "u1" {
		t.Fatalf("subject = %q", ext.SubjectID)
	}
	records, ok := ext.Raw.([]any)
	if !ok || len(records) != 1 {
		t.Fatalf("raw payload shape lost: %#v", ext.Raw)
	}
	if ext.ExpiresAt.IsZero() {
		t.Fatal("expiry not carried through")
	}
}

func TestExtractMissingClaimYieldsNilRaw(t *testing.T) {
	m := newEdManager(t, nil)

	token, err := m.Issue("u1", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ext, err := m.Extract(token)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ext.Raw != nil {
		t.Fatalf("absent claim must yield nil raw, got %#v", ext.Raw)
	}
}

func TestExtractRejectsWrongKey(t *testing.T) {
	signer := newEdManager(t, nil)
	verifier := newEdManager(t, nil) // different key pair

	token, err := signer.Issue("u1", map[string]any{"leads": "*"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Extract(token); err == nil {
		t.Fatal("token signed by another key must be rejected")
	}
}

func TestExtractRejectsExpired(t *testing.T) {
	m := newEdManager(t, func(c *Config) { c.TokenTTL = -time.Minute })

	token, err := m.Issue("u1", map[string]any{"leads": "*"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Extract(token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestExtractRejectsWrongIssuer(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	signer, err := NewManager(Config{PrivateKey: priv, PublicKey: pub, Issuer: "rogue", TokenTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	verifier, err := NewManager(Config{PrivateKey: priv, PublicKey: pub, Issuer: "idp.test", TokenTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := signer.Issue("u1", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Extract(token); err == nil {
		t.Fatal("wrong issuer must be rejected")
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	m := newEdManager(t, nil)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Extract(token); err == nil {
			t.Fatalf("garbage token %q must be rejected", token)
		}
	}
}

func TestHS256RoundTrip(t *testing.T) {
	m, err := NewManager(Config{
		SigningMethod:    MethodHS256,
		PrivateKey:       []byte("0123456789abcdef0123456789abcdef"),
		PermissionsClaim: "authz",
		TokenTTL:         time.Minute,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.Issue("u2", map[string]any{"tasks": "all"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ext, err := m.Extract(token)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ext.SubjectID != "u2" {
		t.Fatalf("subject = %q", ext.SubjectID)
	}
	if _, ok := ext.Raw.(map[string]any); !ok {
		t.Fatalf("custom claim name not honored: %#v", ext.Raw)
	}
}

func TestNewManagerValidation(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "hs256 without key", cfg: Config{SigningMethod: MethodHS256}},
		{name: "ed25519 without public key", cfg: Config{SigningMethod: MethodEd25519}},
		{name: "unknown method", cfg: Config{SigningMethod: "rs256", PublicKey: pub}},
		{name: "excessive leeway", cfg: Config{PublicKey: pub, Leeway: time.Hour}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}
