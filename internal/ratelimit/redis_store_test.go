package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreIncrementStartsWindowOnFirstHit(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	window := time.Minute

	count, resetAt, err := store.Increment(ctx, "ratelimit:auth:10.0.0.1", window)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.WithinDuration(t, time.Now().Add(window), resetAt, time.Second)
	assert.Equal(t, window, mr.TTL("ratelimit:auth:10.0.0.1"))

	mr.FastForward(20 * time.Second)
	count, resetAt, err = store.Increment(ctx, "ratelimit:auth:10.0.0.1", window)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.WithinDuration(t, time.Now().Add(40*time.Second), resetAt, time.Second)
	assert.Equal(t, 40*time.Second, mr.TTL("ratelimit:auth:10.0.0.1"), "later hits must not extend the window")
}

func TestRedisStoreIncrementRestoresMissingExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set("ratelimit:auth:10.0.0.2", "3"))

	count, resetAt, err := store.Increment(context.Background(), "ratelimit:auth:10.0.0.2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.WithinDuration(t, time.Now().Add(time.Minute), resetAt, time.Second)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:auth:10.0.0.2"))
}

func TestRedisStoreWindowExpires(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := store.Increment(ctx, "ratelimit:general:ip", time.Minute)
		require.NoError(t, err)
	}
	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists("ratelimit:general:ip"))

	count, _, err := store.Increment(ctx, "ratelimit:general:ip", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRedisStoreDecrementFloorsAtZero(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Increment(ctx, "ratelimit:auth:ip", time.Minute)
	require.NoError(t, err)
	_, _, err = store.Increment(ctx, "ratelimit:auth:ip", time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Decrement(ctx, "ratelimit:auth:ip"))
	mr.CheckGet(t, "ratelimit:auth:ip", "1")
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:auth:ip"), "decrement keeps the window")

	require.NoError(t, store.Decrement(ctx, "ratelimit:auth:ip"))
	require.NoError(t, store.Decrement(ctx, "ratelimit:auth:ip"))
	mr.CheckGet(t, "ratelimit:auth:ip", "0")
}

func TestRedisStoreDecrementMissingKey(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Decrement(context.Background(), "ratelimit:auth:nobody"))
	assert.False(t, mr.Exists("ratelimit:auth:nobody"))
}

func TestLimiterOverRedisStore(t *testing.T) {
	store, mr := newTestRedisStore(t)
	l := New(AuthPolicy, store)
	ctx := context.Background()

	for i := 1; i <= AuthPolicy.Max; i++ {
		res, err := l.Hit(ctx, "10.0.0.9")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i)
	}
	res, err := l.Hit(ctx, "10.0.0.9")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	require.NoError(t, l.Undo(ctx, "10.0.0.9"))
	mr.CheckGet(t, "ratelimit:auth:10.0.0.9", "5")
	require.NoError(t, store.Ping(ctx))
}
