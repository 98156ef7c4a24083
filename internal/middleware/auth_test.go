package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/request"
	"go.uber.org/zap"
)

type fakeVerifier struct {
	token  string
	claims *models.JWTClaims
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*models.JWTClaims, error) {
	if token != f.token {
		return nil, errors.New("bad signature")
	}
	return f.claims, nil
}

func ownerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := request.Owner(r)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(owner))
	})
}

func TestAuth_LocalOwnerWithoutVerifier(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	w := httptest.NewRecorder()
	Auth(nil, zap.NewNop())(ownerEcho()).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != models.LocalOwner {
		t.Errorf("Expected owner %q, got %q", models.LocalOwner, w.Body.String())
	}
}

func TestAuth_Verifier(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{
		token:  "good-token",
		claims: &models.JWTClaims{Sub: "user-123", Email: "a@example.com"},
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantError  string
	}{
		{name: "valid token", header: "Bearer good-token", wantStatus: http.StatusOK, wantBody: "user-123"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantError: "Missing Authorization header"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantError: "Invalid Authorization header format"},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantError: "Invalid Authorization header format"},
		{name: "invalid token", header: "Bearer forged", wantStatus: http.StatusUnauthorized, wantError: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			Auth(verifier, zap.NewNop())(ownerEcho()).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("Expected body %q, got %q", tt.wantBody, w.Body.String())
			}
			if tt.wantError != "" {
				var body ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
					t.Fatalf("Failed to decode error response: %v", err)
				}
				if body.Success || body.Message != tt.wantError {
					t.Errorf("Unexpected error envelope: %+v", body)
				}
			}
		})
	}
}
