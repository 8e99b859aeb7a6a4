package gencache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/yanqian/content-interlinker/pkg/errors"
	"github.com/yanqian/content-interlinker/pkg/metrics"
)

// Store is the byte-level backend behind the cache service.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Entry is a stored value and its expiry. Backends that keep records in
// process use it as their record type.
type Entry struct {
	Namespace string
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

// Cache memoizes generation results. None of its methods fail: every problem
// is logged and treated as a miss.
type Cache struct {
	store  Store
	logger *slog.Logger
	group  singleflight.Group
}

// New builds the cache service over store.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{store: store, logger: logger.With("component", "gencache.cache")}
}

// Get decodes the cached value for (namespace, params) into dest and reports
// whether it was found.
func (c *Cache) Get(ctx context.Context, namespace string, params, dest any) bool {
	if c == nil {
		return false
	}
	key, err := Key(namespace, params)
	if err != nil {
		c.warn("cache key derivation failed", namespace, err)
		metrics.CacheRequests.WithLabelValues(namespace, metrics.CacheError).Inc()
		return false
	}
	return c.getByKey(ctx, namespace, key, dest)
}

// Set stores value under (namespace, params) for the lifetime of tier.
func (c *Cache) Set(ctx context.Context, namespace string, params, value any, tier Tier) {
	if c == nil {
		return
	}
	key, err := Key(namespace, params)
	if err != nil {
		c.warn("cache key derivation failed", namespace, err)
		return
	}
	c.setByKey(ctx, namespace, key, value, tier)
}

// Delete drops the entry for (namespace, params).
func (c *Cache) Delete(ctx context.Context, namespace string, params any) {
	if c == nil {
		return
	}
	key, err := Key(namespace, params)
	if err != nil {
		return
	}
	defer c.recoverStore("delete", namespace)
	if err := c.store.Delete(ctx, key); err != nil {
		c.warn("cache delete failed", namespace, err)
	}
}

func (c *Cache) getByKey(ctx context.Context, namespace, key string, dest any) (found bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("cache store panicked", "op", "get", "namespace", namespace, "code", apperrors.CodeCache, "panic", fmt.Sprint(r))
			metrics.CacheRequests.WithLabelValues(namespace, metrics.CacheError).Inc()
			found = false
		}
	}()
	payload, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.warn("cache get failed", namespace, err)
		metrics.CacheRequests.WithLabelValues(namespace, metrics.CacheError).Inc()
		return false
	}
	if !ok {
		metrics.CacheRequests.WithLabelValues(namespace, metrics.CacheMiss).Inc()
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.warn("cache entry undecodable", namespace, err)
		metrics.CacheRequests.WithLabelValues(namespace, metrics.CacheError).Inc()
		return false
	}
	metrics.CacheRequests.WithLabelValues(namespace, metrics.CacheHit).Inc()
	return true
}

func (c *Cache) setByKey(ctx context.Context, namespace, key string, value any, tier Tier) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.warn("cache value not encodable", namespace, err)
		return
	}
	defer c.recoverStore("set", namespace)
	if err := c.store.Set(ctx, key, payload, tier.Duration()); err != nil {
		c.warn("cache set failed", namespace, err, "tier", tier.String())
	}
}

func (c *Cache) recoverStore(op, namespace string) {
	if r := recover(); r != nil {
		c.logger.Warn("cache store panicked", "op", op, "namespace", namespace, "code", apperrors.CodeCache, "panic", fmt.Sprint(r))
	}
}

// warn logs a swallowed cache failure tagged with the cache_error code.
func (c *Cache) warn(msg, namespace string, err error, attrs ...any) {
	err = apperrors.Wrap(apperrors.CodeCache, msg, err)
	c.logger.Warn(msg, append([]any{"namespace", namespace, "code", apperrors.CodeOf(err), "error", err}, attrs...)...)
}
