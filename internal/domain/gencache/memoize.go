package gencache

import (
	"context"

	"github.com/yanqian/content-interlinker/pkg/metrics"
)

// Memoize returns the cached result for (namespace, params) or runs fn and
// caches its result for tier. Concurrent callers that miss on the same key
// share a single run of fn. Errors from fn are returned and never cached.
//
// The shared run is detached from any caller's cancellation. A caller whose
// ctx ends stops waiting and gets ctx.Err(); the run continues for the others
// and its result is still cached.
func Memoize[T any](ctx context.Context, c *Cache, namespace string, params any, tier Tier, fn func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}
	key, err := Key(namespace, params)
	if err != nil {
		c.warn("cache key derivation failed, computing uncached", namespace, err)
		metrics.CacheRequests.WithLabelValues(namespace, metrics.CacheError).Inc()
		return fn(ctx)
	}

	var cached T
	if c.getByKey(ctx, namespace, key, &cached) {
		return cached, nil
	}

	detached := context.WithoutCancel(ctx)
	results := c.group.DoChan(key, func() (any, error) {
		out, fnErr := fn(detached)
		if fnErr != nil {
			return out, fnErr
		}
		c.setByKey(detached, namespace, key, out, tier)
		return out, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-results:
		if res.Shared {
			metrics.CacheSharedCalls.WithLabelValues(namespace).Inc()
		}
		if res.Err != nil {
			return zero, res.Err
		}
		out, ok := res.Val.(T)
		if !ok {
			return zero, nil
		}
		return out, nil
	}
}
