package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)

	token, expiresAt, err := manager.GenerateAccessToken(42)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("token already expired at generation time")
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("unexpected user id in claims: got %d want 42", claims.UserID)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)

	base := time.Now()
	manager.now = func() time.Time { return base }

	token, _, err := manager.GenerateAccessToken(7)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	manager.now = func() time.Time { return base.Add(2 * time.Minute) }

	if _, err := manager.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("secret-a", time.Minute)
	other := NewJWTManager("secret-b", time.Minute)

	token, _, err := manager.GenerateAccessToken(7)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := other.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign token, got %v", err)
	}
}
