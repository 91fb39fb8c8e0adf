package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/alicebob/miniredis/v2"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "basket:alice", Key("basket", "alice"))
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr())
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	_, found, err := c.Get(ctx, "basket:alice")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.Set(ctx, "basket:alice", `{"userName":"alice"}`, time.Minute))
	value, found, err := c.Get(ctx, "basket:alice")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"userName":"alice"}`, value)
	assert.Equal(t, time.Minute, mr.TTL("basket:alice"))

	mr.FastForward(2 * time.Minute)
	_, found, err = c.Get(ctx, "basket:alice")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.Set(ctx, "basket:bob", "x", time.Minute))
	assert.NoError(t, c.Remove(ctx, "basket:bob"))
	assert.NoError(t, c.Remove(ctx, "basket:bob"))
	assert.False(t, mr.Exists("basket:bob"))
}

func TestRedisCacheUnreachable(t *testing.T) {
	c := NewRedisCache("127.0.0.1:1")
	t.Cleanup(func() { _ = c.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, found, err := c.Get(ctx, "basket:alice")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, c.Set(ctx, "basket:alice", "x", time.Minute))
	added, err := c.Add(ctx, "basket:alice", "x", time.Minute)
	assert.Error(t, err)
	assert.False(t, added)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "basket:alice", "v1", time.Minute))
	value, found, err := c.Get(ctx, "basket:alice")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", value)

	assert.NoError(t, c.Remove(ctx, "basket:alice"))
	_, found, err = c.Get(ctx, "basket:alice")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.Set(ctx, "basket:short", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, found, _ = c.Get(ctx, "basket:short")
	assert.False(t, found)
}

func TestRedisCacheAddKeepsExistingEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr())
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	added, err := c.Add(ctx, "basket:alice", "v1", time.Minute)
	assert.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, time.Minute, mr.TTL("basket:alice"))

	assert.NoError(t, c.Set(ctx, "basket:alice", "v2", 2*time.Minute))
	added, err = c.Add(ctx, "basket:alice", "v1", time.Minute)
	assert.NoError(t, err)
	assert.False(t, added)
	value, _, err := c.Get(ctx, "basket:alice")
	assert.NoError(t, err)
	assert.Equal(t, "v2", value)
	assert.Equal(t, 2*time.Minute, mr.TTL("basket:alice"))

	mr.FastForward(3 * time.Minute)
	added, err = c.Add(ctx, "basket:alice", "v3", time.Minute)
	assert.NoError(t, err)
	assert.True(t, added)
}

func TestMemoryCacheAddKeepsExistingEntry(t *testing.T) {
	c := NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	added, err := c.Add(ctx, "basket:alice", "v1", time.Minute)
	assert.NoError(t, err)
	assert.True(t, added)

	assert.NoError(t, c.Set(ctx, "basket:alice", "v2", time.Minute))
	added, err = c.Add(ctx, "basket:alice", "v1", time.Minute)
	assert.NoError(t, err)
	assert.False(t, added)
	value, found, err := c.Get(ctx, "basket:alice")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", value)

	assert.NoError(t, c.Remove(ctx, "basket:alice"))
	added, err = c.Add(ctx, "basket:alice", "v3", time.Minute)
	assert.NoError(t, err)
	assert.True(t, added)
}
