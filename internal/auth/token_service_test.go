package auth

import (
	"testing"
	"time"
)

func newTestTokenService(expiry time.Duration) *TokenService {
	return NewTokenService(TokenServiceConfig{
		AccessSecret:      "test-secret",
		AccessTokenExpiry: expiry,
		Issuer:            "mailroom",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	service := newTestTokenService(15 * time.Minute)

	token, err := service.GenerateAccessToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	claims, err := service.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Errorf("UserID() = %q, want user-1", claims.UserID())
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	service := newTestTokenService(-time.Minute)

	token, err := service.GenerateAccessToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	if _, err := service.ValidateAccessToken(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestWrongIssuerRejected(t *testing.T) {
	other := NewTokenService(TokenServiceConfig{
		AccessSecret:      "test-secret",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "someone-else",
	})
	token, err := other.GenerateAccessToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	service := newTestTokenService(15 * time.Minute)
	if _, err := service.ValidateAccessToken(token); err == nil {
		t.Error("token with wrong issuer accepted")
	}
}
