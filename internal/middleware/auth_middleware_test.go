package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mailroomhq/mailroom/internal/auth"
	appctx "github.com/mailroomhq/mailroom/internal/context"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *auth.TokenService) {
	t.Helper()
	tokenService := auth.NewTokenService(auth.TokenServiceConfig{
		AccessSecret:      "test-secret",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "mailroom",
	})
	return NewAuthMiddleware(tokenService), tokenService
}

func TestAuthenticateInjectsIdentity(t *testing.T) {
	mw, tokenService := newTestMiddleware(t)

	token, err := tokenService.GenerateAccessToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	var gotUserID, gotEmail string
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = appctx.ExtractUserID(r.Context())
		gotEmail, _ = appctx.ExtractEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Errorf("user ID = %q, want user-1", gotUserID)
	}
	if gotEmail != "user@example.com" {
		t.Errorf("email = %q", gotEmail)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without valid token")
	}))

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{"missing header", "", "未登录"},
		{"no bearer prefix", "token-without-scheme", "登录状态无效，请重新登录"},
		{"empty token", "Bearer ", "登录状态无效，请重新登录"},
		{"garbage token", "Bearer not.a.jwt", "登录状态已过期，请重新登录"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Success {
				t.Error("rejection reported success=true")
			}
			if resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}
		})
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	other := auth.NewTokenService(auth.TokenServiceConfig{
		AccessSecret:      "different-secret",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "mailroom",
	})
	token, err := other.GenerateAccessToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with forged token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
