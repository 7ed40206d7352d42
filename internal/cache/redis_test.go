package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client, "test")
}

func TestRedisCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	gen, err := c.Generation(ctx, "availability:shop1")
	require.NoError(t, err)
	assert.Zero(t, gen)

	_, ok, err := c.Get(ctx, "availability:shop1", gen, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "availability:shop1", gen, "a", []byte(`[1]`), time.Minute))
	require.NoError(t, c.Set(ctx, "availability:shop1", gen, "b", []byte(`[2]`), time.Minute))

	val, ok, err := c.Get(ctx, "availability:shop1", gen, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(val))
	assert.True(t, mr.Exists("test:availability:shop1:0:a"))

	require.NoError(t, c.Invalidate(ctx, "availability:shop1"))

	next, err := c.Generation(ctx, "availability:shop1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	_, ok, err = c.Get(ctx, "availability:shop1", next, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Expires(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "bucket", 0, "f", []byte("x"), time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := c.Get(ctx, "bucket", 0, "f")
	require.NoError(t, err)
	assert.False(t, ok)
}

// Writes to other fields of the bucket must not push an entry's expiry back.
func TestRedisCache_EntryTTLIsIndependent(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "bucket", 0, "old", []byte("x"), time.Minute))
	for i := 0; i < 10; i++ {
		mr.FastForward(50 * time.Second)
		require.NoError(t, c.Set(ctx, "bucket", 0, "other", []byte("y"), time.Minute))
	}

	_, ok, err := c.Get(ctx, "bucket", 0, "old")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.Get(ctx, "bucket", 0, "other")
	require.NoError(t, err)
	assert.True(t, ok)
}

// A value computed before an invalidation is stored under the old
// generation and never served.
func TestRedisCache_LateWriteAfterInvalidateIsNotServed(t *testing.T) {
	ctx := context.Background()
	_, c := newTestRedis(t)

	seen, err := c.Generation(ctx, "bucket")
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, "bucket"))
	require.NoError(t, c.Set(ctx, "bucket", seen, "f", []byte("stale"), time.Minute))

	current, err := c.Generation(ctx, "bucket")
	require.NoError(t, err)
	_, ok, err := c.Get(ctx, "bucket", current, "f")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ErrorWhenServerDown(t *testing.T) {
	mr, c := newTestRedis(t)
	mr.Close()

	_, err := c.Generation(context.Background(), "bucket")
	assert.Error(t, err)

	_, _, err = c.Get(context.Background(), "bucket", 0, "f")
	assert.Error(t, err)
}
