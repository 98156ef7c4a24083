package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a backend
type Options struct {
	Backend     string
	DataDir     string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
}

// Open constructs the KV named by opts.Backend
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		if opts.DataDir == "" {
			return nil, fmt.Errorf("storage: file backend requires a data directory")
		}
		return NewFileStore(opts.DataDir)
	case BackendSQLite:
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("storage: sqlite backend requires a database path")
		}
		return OpenSQLite(ctx, opts.SQLitePath)
	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("storage: postgres backend requires DATABASE_URL")
		}
		return OpenPostgres(ctx, opts.DatabaseURL)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("storage: redis backend requires REDIS_URL")
		}
		return OpenRedis(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}
