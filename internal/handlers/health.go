package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/storage"
	"github.com/redis/go-redis/v9"
)

const healthCheckTimeout = 5 * time.Second

// HealthChecker handles health check requests
type HealthChecker struct {
	store    storage.KV
	jobQueue queue.JobQueue
	redis    *redis.Client
}

// NewHealthChecker creates a new health checker. jobQueue and redisClient
// may be nil when those dependencies are not configured.
func NewHealthChecker(store storage.KV, jobQueue queue.JobQueue, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{store: store, jobQueue: jobQueue, redis: redisClient}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. With ?mode=extended every
// configured dependency is probed and any failure yields 503.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		record := func(name string, err error) {
			if err != nil {
				response.Status = "unhealthy"
				checks[name] = "unhealthy: " + sanitizeErrorMessage(err.Error())
				return
			}
			checks[name] = "healthy"
		}

		if h.store != nil {
			record("storage", h.store.Ping(ctx))
		}
		if h.jobQueue != nil {
			record("queue", h.jobQueue.HealthCheck(ctx))
		}
		if h.redis != nil {
			record("redis", h.redis.Ping(ctx).Err())
		}
		response.Checks = checks
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
