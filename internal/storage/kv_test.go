package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the behaviour every backend must share
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "alice/tasks")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "alice/tasks", []byte(`[{"id":"1"}]`)))
	got, err := kv.Get(ctx, "alice/tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, kv.Set(ctx, "alice/tasks", []byte(`[]`)))
	got, err = kv.Get(ctx, "alice/tasks")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	// keys are independent
	_, err = kv.Get(ctx, "bob/tasks")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Delete(ctx, "alice/tasks"))
	_, err = kv.Get(ctx, "alice/tasks")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting an absent key is not an error
	assert.NoError(t, kv.Delete(ctx, "alice/tasks"))

	assert.NoError(t, kv.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseKV(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("original")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	exerciseKV(t, s)
}

func TestFileStore_LayoutAndPersistence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "alice/completed_tasks", []byte(`[]`)))

	_, err = os.Stat(filepath.Join(dir, "alice", "completed_tasks.json"))
	require.NoError(t, err)

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "alice/completed_tasks")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a//b", "a/./b", "/abs"} {
		assert.Error(t, s.Set(ctx, key, []byte("x")), "key %q", key)
	}
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	exerciseKV(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseKV(t, s)
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	s, err := OpenRedis(context.Background(), redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseKV(t, s)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	kv, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, kv)

	kv, err = Open(ctx, Options{Backend: BackendFile, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, kv)

	_, err = Open(ctx, Options{Backend: BackendFile})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendPostgres})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendRedis})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "cassandra"})
	assert.Error(t, err)
}
