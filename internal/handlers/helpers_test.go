package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/tasks"
	"go.uber.org/zap"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusCreated, []string{"a", "b"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	var body struct {
		Success   bool     `json:"success"`
		Data      []string `json:"data"`
		Timestamp string   `json:"timestamp"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !body.Success || len(body.Data) != 2 {
		t.Errorf("Unexpected envelope %+v", body)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Errorf("Timestamp '%s' is not valid RFC3339: %v", body.Timestamp, err)
	}
}

func TestRespondJSONError_Truncates(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "Bad Request", strings.Repeat("é", maxErrorMessageLength+10))

	var body envelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Success || body.Error != "Bad Request" {
		t.Errorf("Unexpected envelope %+v", body)
	}
	if got := len([]rune(body.Message)); got != maxErrorMessageLength+3 {
		t.Errorf("Expected %d runes, got %d", maxErrorMessageLength+3, got)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"text":"hi"}`, ""},
		{"empty", ``, "request body is required"},
		{"unknown field", `{"text":"hi","extra":1}`, "unknown field"},
		{"trailing data", `{"text":"hi"} {"text":"again"}`, "unexpected trailing data"},
		{"malformed", `{"text":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/drafts", strings.NewReader(tt.body))
			var v struct {
				Text string `json:"text"`
			}
			err := decodeJSON(req, &v)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if v.Text != "hi" {
					t.Errorf("Expected text 'hi', got %q", v.Text)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRespondTaskError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", fmt.Errorf("%w: title is required", tasks.ErrValidation), http.StatusBadRequest, "validation failed: title is required"},
		{"not found", tasks.ErrNotFound, http.StatusNotFound, "Task not found"},
		{"completed", fmt.Errorf("complete: %w", tasks.ErrTaskCompleted), http.StatusConflict, "Task is already completed"},
		{"storage", errors.New("disk full at /var/lib/planner"), http.StatusInternalServerError, "Failed to update task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/tasks/1", nil)
			w := httptest.NewRecorder()
			respondTaskError(w, req, zap.NewNop(), "update_task", tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body envelope
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, body.Message)
			}
		})
	}
}
