package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dialect captures the placeholder and upsert differences between drivers
type dialect struct {
	driver string
	schema string
	get    string
	upsert string
	delete string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite3",
		schema: `CREATE TABLE IF NOT EXISTS kv_blobs (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		get: `SELECT value FROM kv_blobs WHERE key = ?`,
		upsert: `INSERT INTO kv_blobs (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		delete: `DELETE FROM kv_blobs WHERE key = ?`,
	}
	postgresDialect = dialect{
		driver: "postgres",
		schema: `CREATE TABLE IF NOT EXISTS kv_blobs (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		get: `SELECT value FROM kv_blobs WHERE key = $1`,
		upsert: `INSERT INTO kv_blobs (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		delete: `DELETE FROM kv_blobs WHERE key = $1`,
	}
)

// SQLStore keeps blobs in a single kv_blobs table of a SQLite or PostgreSQL database
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// OpenSQLite opens (and migrates) a SQLite database file
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	return openSQL(ctx, sqliteDialect, path)
}

// OpenPostgres connects to PostgreSQL and creates the kv_blobs table if needed
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return openSQL(ctx, postgresDialect, dsn)
}

func openSQL(ctx context.Context, d dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	store, err := NewSQLStore(ctx, db, d.driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database handle. driver is "sqlite3" or "postgres".
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	var d dialect
	switch driver {
	case sqliteDialect.driver:
		d = sqliteDialect
		// a single connection serialises writers and keeps :memory: databases coherent
		db.SetMaxOpenConns(1)
	case postgresDialect.driver:
		d = postgresDialect
	default:
		return nil, fmt.Errorf("storage: unsupported sql driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return nil, fmt.Errorf("migrate kv_blobs: %w", err)
	}
	return &SQLStore{db: db, dialect: d, now: time.Now}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	var updatedAt any = s.now().UTC()
	if s.dialect.driver == sqliteDialect.driver {
		updatedAt = s.now().UTC().Format(time.RFC3339Nano)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, updatedAt); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.delete, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
