package token

import (
	"testing"
	"time"

	"authbase/internal/platform/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:           "test-secret",
		AuthTokenTTL:     time.Hour,
		RememberTokenTTL: 30 * 24 * time.Hour,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	svc := NewService(testJWTConfig())

	tokenString, err := svc.GenerateAuthToken("usr_1", "customer")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := svc.Validate(tokenString)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != "usr_1" {
		t.Errorf("Expected user usr_1, got %s", claims.UserID)
	}
	if claims.Role != "customer" {
		t.Errorf("Expected role customer, got %s", claims.Role)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService(testJWTConfig())

	if _, err := svc.Validate("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc := NewService(testJWTConfig())
	other := NewService(config.JWTConfig{Secret: "other-secret", AuthTokenTTL: time.Hour})

	tokenString, err := other.GenerateAuthToken("usr_1", "customer")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.Validate(tokenString); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AuthTokenTTL = -time.Minute
	svc := NewService(cfg)

	tokenString, err := svc.GenerateAuthToken("usr_1", "customer")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.Validate(tokenString); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestRememberTokenOutlivesAuthToken(t *testing.T) {
	svc := NewService(testJWTConfig())

	authToken, err := svc.GenerateAuthToken("usr_1", "customer")
	if err != nil {
		t.Fatalf("Failed to generate auth token: %v", err)
	}
	rememberToken, err := svc.GenerateRememberToken("usr_1", "customer")
	if err != nil {
		t.Fatalf("Failed to generate remember token: %v", err)
	}

	authClaims, err := svc.Validate(authToken)
	if err != nil {
		t.Fatalf("Failed to validate auth token: %v", err)
	}
	rememberClaims, err := svc.Validate(rememberToken)
	if err != nil {
		t.Fatalf("Failed to validate remember token: %v", err)
	}

	if !rememberClaims.ExpiresAt.After(authClaims.ExpiresAt.Time) {
		t.Errorf("Expected remember expiry %v after auth expiry %v",
			rememberClaims.ExpiresAt.Time, authClaims.ExpiresAt.Time)
	}
}
