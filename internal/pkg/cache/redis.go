package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a string key/value store with per-entry TTL. Values are opaque to
// the cache; callers own serialization.
type Cache interface {
	// Get reports found=false on a miss. A non-nil error means the backend
	// could not be reached, not that the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Add stores value only when key holds no live entry and reports whether
	// it did. An existing entry is left as is, TTL included.
	Add(ctx context.Context, key string, value string, ttl time.Duration) (added bool, err error)
	Remove(ctx context.Context, key string) error
}

// Key builds a namespaced cache key, e.g. Key("basket", "alice") = "basket:alice".
func Key(namespace, id string) string {
	return fmt.Sprintf("%s:%s", namespace, id)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewRedisCacheFromClient wraps an existing client; the caller keeps ownership.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Add(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	added, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %q: %w", key, err)
	}
	return added, nil
}

func (r *RedisCache) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
