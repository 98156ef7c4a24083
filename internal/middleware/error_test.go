package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/smart-planner/internal/request"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantPanic  bool
	}{
		{
			name:       "no panic",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "explicit panic",
			handler:    func(w http.ResponseWriter, r *http.Request) { panic("scheduler exploded") },
			wantStatus: http.StatusInternalServerError,
			wantPanic:  true,
		},
		{
			name: "runtime panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var owners map[string]string
				owners["local"] = "x"
			},
			wantStatus: http.StatusInternalServerError,
			wantPanic:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.ErrorLevel)
			handler := ErrorHandler(zap.New(core))(tt.handler)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			req = req.WithContext(request.WithRequestID(req.Context(), "req-42"))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := logs.FilterMessage("panic_recovered").Len(); (got == 1) != tt.wantPanic {
				t.Errorf("panic_recovered logged %d times, wantPanic %v", got, tt.wantPanic)
			}
			if !tt.wantPanic {
				return
			}

			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}
			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Success || body.Error != "Internal Server Error" || body.Message != "An unexpected error occurred" {
				t.Errorf("Unexpected envelope %+v", body)
			}
			if body.Path != "/api/v1/tasks" || body.RequestID != "req-42" || body.Timestamp == "" {
				t.Errorf("Expected path, request id and timestamp, got %+v", body)
			}
		})
	}
}
