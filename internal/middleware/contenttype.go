package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ContentType requires application/json on POST, PUT and PATCH requests that
// carry a body. Bodyless actions such as completing a task pass through.
func ContentType(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasBody := r.ContentLength != 0
			if hasBody && (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) {
				contentType := r.Header.Get("Content-Type")
				if contentType == "" {
					respondErrorJSON(w, r, http.StatusBadRequest, "Bad Request", "Content-Type header is required", logger)
					return
				}
				// Allow charset and other parameters
				if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
					respondErrorJSON(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type must be application/json", logger)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
