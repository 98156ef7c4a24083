package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/storage"
	"go.uber.org/zap"
)

func serveFrom(h http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.RemoteAddr = ip + ":4321"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	store, err := NewLimiterStore(nil)
	if err != nil {
		t.Fatalf("NewLimiterStore: %v", err)
	}
	mw, err := RateLimit(store, "2-M")
	if err != nil {
		t.Fatalf("RateLimit: %v", err)
	}
	h := mw(okHandler())

	for i := 0; i < 2; i++ {
		if code := serveFrom(h, "192.0.2.10"); code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := serveFrom(h, "192.0.2.10"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after limit, got %d", code)
	}
	if code := serveFrom(h, "192.0.2.11"); code != http.StatusOK {
		t.Errorf("Expected other client to pass, got %d", code)
	}
}

func TestRateLimit_InvalidRate(t *testing.T) {
	t.Parallel()

	store, _ := NewLimiterStore(nil)
	if _, err := RateLimit(store, "lots"); err == nil {
		t.Error("Expected error for malformed rate")
	}
}

func TestRateLimitReloader(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewRatelimitConfigRepository(storage.NewMemoryStore())
	store, _ := NewLimiterStore(nil)
	reloader := NewRateLimitReloader(store, repo, "1-M", zap.NewNop(), 0)
	h := reloader.Middleware()(okHandler())

	cfg, err := repo.Get(ctx)
	if err != nil || cfg == nil || cfg.Rate != "1-M" {
		t.Fatalf("Expected default rate to be saved, got %+v (err %v)", cfg, err)
	}
	if reloader.Rate() != "1-M" {
		t.Errorf("Expected rate 1-M, got %q", reloader.Rate())
	}

	if code := serveFrom(h, "198.51.100.1"); code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", code)
	}
	if code := serveFrom(h, "198.51.100.1"); code != http.StatusTooManyRequests {
		t.Fatalf("Expected second request to be limited, got %d", code)
	}

	if err := repo.Set(ctx, &models.RatelimitConfig{Rate: "10-M"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	reloader.load(ctx)
	if reloader.Rate() != "10-M" {
		t.Fatalf("Expected reloaded rate 10-M, got %q", reloader.Rate())
	}
	if code := serveFrom(h, "198.51.100.1"); code != http.StatusOK {
		t.Errorf("Expected request under new rate to pass, got %d", code)
	}
}

func TestRateLimitReloader_BadStoredRateFallsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewRatelimitConfigRepository(storage.NewMemoryStore())
	if err := repo.Set(ctx, &models.RatelimitConfig{Rate: "fast"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	store, _ := NewLimiterStore(nil)
	reloader := NewRateLimitReloader(store, repo, "3-S", zap.NewNop(), 0)
	reloader.Middleware()(okHandler())

	if reloader.Rate() != "3-S" {
		t.Errorf("Expected fallback rate 3-S, got %q", reloader.Rate())
	}
}
