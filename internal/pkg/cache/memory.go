package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryCache keeps entries in process. Used for local runs without Redis.
type MemoryCache struct {
	entries *ttlcache.Cache[string, string]
}

// NewMemoryCache starts the expiry loop; call Close to stop it.
func NewMemoryCache() *MemoryCache {
	c := ttlcache.New[string, string](ttlcache.WithDisableTouchOnHit[string, string]())
	go c.Start()
	return &MemoryCache{entries: c}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	item := m.entries.Get(key)
	if item == nil || item.IsExpired() {
		return "", false, nil
	}
	return item.Value(), true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.entries.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Add(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	_, found := m.entries.GetOrSet(key, value, ttlcache.WithTTL[string, string](ttl))
	return !found, nil
}

func (m *MemoryCache) Remove(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *MemoryCache) Close() error {
	m.entries.Stop()
	return nil
}
