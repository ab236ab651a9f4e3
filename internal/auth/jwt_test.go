package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTGenerateValidate(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "episteme")
	jwtToken, err := manager.Generate("user-1", "researcher")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := manager.Validate(jwtToken)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "researcher" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestJWTGenerateInvalid(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "episteme")
	if _, err := manager.Generate("", "researcher"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestJWTValidateExpired(t *testing.T) {
	manager := NewJWTManager("secret", -time.Minute, "episteme")
	jwtToken, err := manager.Generate("user-1", "researcher")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := manager.Validate(jwtToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error for expired token, got %v", err)
	}
}

func TestJWTValidateWrongSecret(t *testing.T) {
	minter := NewJWTManager("secret-a", time.Hour, "episteme")
	verifier := NewJWTManager("secret-b", time.Hour, "episteme")

	jwtToken, err := minter.Generate("user-1", "researcher")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := verifier.Validate(jwtToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error for forged token, got %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"well formed", "Bearer abc123", "abc123", true},
		{"first space split only", "Bearer ab cd", "ab cd", true},
		{"empty header", "", "", false},
		{"empty token", "Bearer ", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"lowercase scheme", "bearer abc123", "", false},
		{"no space", "Bearerabc123", "", false},
	}

	for _, tc := range tests {
		token, err := TokenFromHeader(tc.header)
		if tc.ok {
			if err != nil || token != tc.token {
				t.Fatalf("%s: expected token %q, got %q err %v", tc.name, tc.token, token, err)
			}
			continue
		}
		if !errors.Is(err, ErrMissingToken) {
			t.Fatalf("%s: expected missing token error, got %v", tc.name, err)
		}
	}
}
