package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/models"
)

// RatelimitConfigKey is where the shared rate limit setting lives
const RatelimitConfigKey = "config/ratelimit"

// RatelimitConfigRepository reads and writes the rate limit setting in a KV store
type RatelimitConfigRepository struct {
	kv  KV
	now func() time.Time
}

// NewRatelimitConfigRepository creates a new ratelimit config repository.
func NewRatelimitConfigRepository(kv KV) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{kv: kv, now: time.Now}
}

// Get retrieves the rate limit config. It returns nil, nil when none is stored.
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	blob, err := r.kv.Get(ctx, RatelimitConfigKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config: %w", err)
	}
	var c models.RatelimitConfig
	if err := json.Unmarshal(blob, &c); err != nil {
		return nil, fmt.Errorf("decode ratelimit config: %w", err)
	}
	return &c, nil
}

// Set stores the rate limit config. Rate format: e.g. "5-S", "100-M".
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return fmt.Errorf("rate cannot be empty")
	}
	blob, err := json.Marshal(models.RatelimitConfig{Rate: rate, UpdatedAt: r.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode ratelimit config: %w", err)
	}
	if err := r.kv.Set(ctx, RatelimitConfigKey, blob); err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	return nil
}
