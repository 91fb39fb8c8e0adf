// Package repository holds the cache-aside decorator placed in front of the
// authoritative basket store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/core/ports"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/cache"
)

const (
	keyNamespace = "basket"

	DefaultTTL = 5 * time.Minute
)

var _ ports.BasketRepository = (*CachedBasketRepository)(nil)

// CachedBasketRepository serves reads from the cache when possible and keeps
// the cache behind the store on every write: the store is written first and the
// cache only follows a confirmed write.
//
// Cache failures never fail an operation. On reads they count as a miss; on
// writes they are logged and the entry is left to expire. Logged cache errors
// wrap domain.ErrUpstreamUnavailable.
//
// A read that misses fills the cache with Add, never Set, so a snapshot read
// before a concurrent Save cannot replace the entry that Save wrote.
type CachedBasketRepository struct {
	inner  ports.BasketRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedBasketRepository(inner ports.BasketRepository, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedBasketRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedBasketRepository{inner: inner, cache: c, ttl: ttl, logger: logger}
}

func CacheKey(userName string) string {
	return cache.Key(keyNamespace, userName)
}

func (r *CachedBasketRepository) Load(ctx context.Context, userName string) (*domain.ShoppingCart, bool, error) {
	key := CacheKey(userName)

	if cart, ok := r.fromCache(ctx, key); ok {
		return cart, true, nil
	}

	cart, found, err := r.inner.Load(ctx, userName)
	if err != nil || !found {
		// Misses are not cached: a cart is usually created right after one.
		return nil, false, err
	}

	if err := r.fill(ctx, key, cart); err != nil {
		r.logger.WarnContext(ctx, "basket cache populate failed", "key", key, "error", err)
	}
	return cart, true, nil
}

func (r *CachedBasketRepository) Save(ctx context.Context, cart *domain.ShoppingCart) error {
	if err := r.inner.Save(ctx, cart); err != nil {
		return err
	}
	key := CacheKey(cart.UserName)
	if err := r.write(ctx, key, cart); err != nil {
		// A stale entry must not outlive the write; if the cache is down the
		// remove fails too and the entry expires with its TTL.
		r.logger.WarnContext(ctx, "basket cache update failed", "key", key, "error", err)
		r.evict(ctx, key)
	}
	return nil
}

func (r *CachedBasketRepository) Delete(ctx context.Context, userName string) error {
	if err := r.inner.Delete(ctx, userName); err != nil {
		return err
	}
	r.evict(ctx, CacheKey(userName))
	return nil
}

func (r *CachedBasketRepository) fromCache(ctx context.Context, key string) (*domain.ShoppingCart, bool) {
	raw, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.WarnContext(ctx, "basket cache get failed, reading store", "key", key, "error", unavailable(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var cart domain.ShoppingCart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		r.logger.WarnContext(ctx, "basket cache entry undecodable, dropping", "key", key, "error", err)
		r.evict(ctx, key)
		return nil, false
	}
	return &cart, true
}

// write replaces the entry unconditionally; only confirmed store writes use it.
func (r *CachedBasketRepository) write(ctx context.Context, key string, cart *domain.ShoppingCart) error {
	encoded, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := r.cache.Set(ctx, key, string(encoded), r.ttl); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *CachedBasketRepository) fill(ctx context.Context, key string, cart *domain.ShoppingCart) error {
	encoded, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if _, err := r.cache.Add(ctx, key, string(encoded), r.ttl); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *CachedBasketRepository) evict(ctx context.Context, key string) {
	if err := r.cache.Remove(ctx, key); err != nil {
		r.logger.WarnContext(ctx, "basket cache remove failed", "key", key, "error", unavailable(err))
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: cache: %w", domain.ErrUpstreamUnavailable, err)
}
