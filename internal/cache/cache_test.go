package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexterpante/scheduler/internal/config"
)

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	key := "test-" + time.Now().Format(time.RFC3339Nano)

	//** Missing key
	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	//** Round trip
	require.NoError(t, store.Set(ctx, key, []byte(`{"status":"optimal"}`)))
	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"status":"optimal"}`, string(value))

	//** Overwrite
	require.NoError(t, store.Set(ctx, key, []byte(`{"status":"infeasible"}`)))
	value, _, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"infeasible"}`, string(value))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()

	exerciseStore(t, store)
}

func TestMemoryStoreExpiry(t *testing.T) {
	//** Arrange
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(context.Background(), "key", []byte("value")))

	//** Act
	now = now.Add(2 * time.Minute)
	_, ok, err := store.Get(context.Background(), "key")

	//** Assert
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerStore(t *testing.T) {
	t.Run("In memory", func(t *testing.T) {
		store, err := NewBadgerStore("", time.Hour)
		require.NoError(t, err)
		defer store.Close()

		exerciseStore(t, store)
	})

	t.Run("Persistent", func(t *testing.T) {
		directory := t.TempDir()
		store, err := NewBadgerStore(directory, 0)
		require.NoError(t, err)
		require.NoError(t, store.Set(context.Background(), "key", []byte("value")))
		require.NoError(t, store.Close())

		reopened, err := NewBadgerStore(directory, 0)
		require.NoError(t, err)
		defer reopened.Close()

		value, ok, err := reopened.Get(context.Background(), "key")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "value", string(value))
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TALA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TALA_TEST_REDIS_ADDR is not set")
	}

	store, err := NewRedisStore(context.Background(), addr, "", 0, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestNew(t *testing.T) {
	store, err := New(context.Background(), config.CacheConfig{Backend: config.CacheMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = New(context.Background(), config.CacheConfig{Backend: config.CacheNone})
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "key", []byte("value")))
	_, ok, _ := store.Get(context.Background(), "key")
	assert.False(t, ok)

	_, err = New(context.Background(), config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}
