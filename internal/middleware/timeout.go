package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds handlers when no timeout is given
const DefaultRequestTimeout = 30 * time.Second

// Timeout cancels the request context after timeout and answers 503 with the
// JSON error envelope if the handler has not written a response by then.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			body, err := json.Marshal(newErrorResponse(r, "Service Unavailable", "Request timed out"))
			if err != nil {
				body = []byte("Request Timeout")
			}
			// TimeoutHandler only copies handler headers on success
			w.Header().Set("Content-Type", "application/json")
			http.TimeoutHandler(next, timeout, string(body)).ServeHTTP(w, r)
		})
	}
}
