package auth

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateAndVerifyToken(t *testing.T) {
	cfg := DefaultTokenConfig("secret")
	tok, err := CreateToken("collaborator-1", cfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := VerifyToken(tok, cfg)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != "collaborator-1" {
		t.Fatalf("expected collaborator-1, got %q", claims.UserID)
	}
}

func TestCreateToken_BadInputs(t *testing.T) {
	cases := []struct {
		name   string
		userID string
		cfg    TokenConfig
	}{
		{"empty secret", "u1", TokenConfig{Expiry: time.Hour}},
		{"empty user", "", TokenConfig{Secret: "s", Expiry: time.Hour}},
		{"non-positive expiry", "u1", TokenConfig{Secret: "s", Expiry: -time.Second}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CreateToken(tc.userID, tc.cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	cfg := TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"}
	tok, err := CreateToken("collaborator-1", cfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	other := cfg
	other.Secret = "wrong"
	if _, err := VerifyToken(tok, other); err == nil {
		t.Fatalf("expected error")
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	cfg := DefaultTokenConfig("secret")
	if _, err := VerifyToken("not-a-token", cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTokenFromRequest(t *testing.T) {
	header := httptest.NewRequest("GET", "/boards", nil)
	header.Header.Set("Authorization", "Bearer abc")
	if got := TokenFromRequest(header); got != "abc" {
		t.Fatalf("expected header token, got %q", got)
	}

	query := httptest.NewRequest("GET", "/ws/boards/b1?token=xyz", nil)
	if got := TokenFromRequest(query); got != "xyz" {
		t.Fatalf("expected query token, got %q", got)
	}

	both := httptest.NewRequest("GET", "/boards?token=xyz", nil)
	both.Header.Set("Authorization", "Bearer abc")
	if got := TokenFromRequest(both); got != "abc" {
		t.Fatalf("header should win over query, got %q", got)
	}

	neither := httptest.NewRequest("GET", "/boards", nil)
	if got := TokenFromRequest(neither); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}
