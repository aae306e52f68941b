package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// storeAt returns a store whose clock only moves when the test advances it
func storeAt(t *testing.T) (*InMemoryIdempotencyStore, func(time.Duration)) {
	t.Helper()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	store := NewInMemoryIdempotencyStore()
	store.now = func() time.Time { return now }
	t.Cleanup(func() { _ = store.Close() })
	return store, func(d time.Duration) { now = now.Add(d) }
}

func TestInMemoryIdempotencyStore_Claims(t *testing.T) {
	ctx := context.Background()
	store, advance := storeAt(t)

	claim := func(key string, ttl time.Duration) bool {
		ok, err := store.MarkProcessed(ctx, key, ttl)
		require.NoError(t, err)
		return ok
	}
	held := func(key string) bool {
		ok, err := store.IsProcessed(ctx, key)
		require.NoError(t, err)
		return ok
	}

	assert.True(t, claim("tenant-a:repay-loan-7", time.Minute))
	assert.False(t, claim("tenant-a:repay-loan-7", time.Minute), "second claim loses")
	assert.True(t, claim("tenant-b:repay-loan-7", time.Minute), "tenants do not share keys")

	advance(59 * time.Second)
	assert.True(t, held("tenant-a:repay-loan-7"))
	advance(time.Second)
	assert.False(t, held("tenant-a:repay-loan-7"), "claim ends at its expiry")
	assert.True(t, claim("tenant-a:repay-loan-7", time.Minute))

	require.NoError(t, store.Release(ctx, "tenant-a:repay-loan-7"))
	assert.False(t, held("tenant-a:repay-loan-7"))
	assert.True(t, claim("tenant-a:repay-loan-7", time.Minute))
	assert.NoError(t, store.Release(ctx, "never-claimed"))
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, advance := storeAt(t)

	for _, key := range []string{"hook-1:attempt-1", "hook-2:attempt-1"} {
		_, err := store.MarkProcessed(ctx, key, time.Minute)
		require.NoError(t, err)
	}
	_, err := store.MarkProcessed(ctx, "disburse-loan-3", time.Hour)
	require.NoError(t, err)
	require.Equal(t, 3, store.Size())

	advance(2 * time.Minute)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
	held, err := store.IsProcessed(ctx, "disburse-loan-3")
	require.NoError(t, err)
	assert.True(t, held)
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := store.MarkProcessed(ctx, "same-command", time.Hour); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore_FallsBackWithoutRedis(t *testing.T) {
	store := NewIdempotencyStore(nil, zap.NewNop())
	defer store.Close()

	_, ok := store.(*InMemoryIdempotencyStore)
	assert.True(t, ok)
}

func TestNewRedisIdempotencyStore_DefaultPrefix(t *testing.T) {
	store := NewRedisIdempotencyStore(nil, "")
	assert.Equal(t, defaultKeyPrefix, store.keyPrefix)
	assert.NoError(t, store.Close())

	store = NewRedisIdempotencyStore(nil, "test:")
	assert.Equal(t, "test:", store.keyPrefix)
}
