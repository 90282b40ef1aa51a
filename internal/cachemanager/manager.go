// Package cachemanager provides a small TTL cache used to avoid
// recomputing aggregates over the session history on every view.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is the caching contract the stats layer depends on.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
