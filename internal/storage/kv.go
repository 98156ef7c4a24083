// Package storage provides the key-value blob stores that back task
// collections, settings, reminder registrations and runtime configuration.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no blob is stored under the key
var ErrNotFound = errors.New("storage: key not found")

// KV stores opaque JSON blobs under string keys.
// Writes replace the previous blob wholesale.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Ensure concrete types implement the interface
var (
	_ KV = (*MemoryStore)(nil)
	_ KV = (*FileStore)(nil)
	_ KV = (*SQLStore)(nil)
	_ KV = (*RedisStore)(nil)
)

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage: empty key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return nil
}
