package middleware

import (
	"net/http"

	logpkg "github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/request"
	"go.uber.org/zap"
)

// auditEvents maps the statuses worth a security log line to their event name
var auditEvents = map[int]string{
	http.StatusUnauthorized:          "security_event",
	http.StatusForbidden:             "security_event",
	http.StatusTooManyRequests:       "rate_limit_violation",
	http.StatusRequestEntityTooLarge: "oversized_request",
}

// Audit logs rejected authentication, rate limit violations and oversized bodies
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &auditResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			event, ok := auditEvents[wrapped.statusCode]
			if !ok {
				return
			}
			fields := []zap.Field{
				zap.String("request_id", request.RequestID(r.Context())),
				zap.Int("status_code", wrapped.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			}
			if owner, ok := request.Owner(r); ok {
				fields = append(fields, zap.String("owner", logpkg.SanitizeOwner(owner)))
			}
			logger.Warn(event, fields...)
		})
	}
}

type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (aw *auditResponseWriter) WriteHeader(code int) {
	aw.statusCode = code
	aw.ResponseWriter.WriteHeader(code)
}
