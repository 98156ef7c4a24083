package middleware

import (
	"fmt"
	"net/http"

	"github.com/benvon/smart-planner/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	defaultRatelimitRate = "5-S"
	ratelimitKeyPrefix   = "planner_limiter"
)

// NewLimiterStore returns a Redis-backed limiter store shared by every server
// instance, or a process-local memory store when redisClient is nil.
func NewLimiterStore(redisClient *redis.Client) (limiter.Store, error) {
	if redisClient == nil {
		return memorystore.NewStoreWithOptions(limiter.StoreOptions{Prefix: ratelimitKeyPrefix}), nil
	}
	store, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: ratelimitKeyPrefix})
	if err != nil {
		return nil, fmt.Errorf("create redis limiter store: %w", err)
	}
	return store, nil
}

// RateLimit returns middleware limiting each client IP to rate (e.g. "5-S", "100-M").
func RateLimit(store limiter.Store, rate string) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	return limiterMiddleware(store, parsed).Handler, nil
}

func limiterMiddleware(store limiter.Store, rate limiter.Rate) *stdlibmw.Middleware {
	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	return stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
}
