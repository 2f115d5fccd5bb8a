// Package cache stores encoded responses for the Cache interceptor. L1 is
// in-process (ristretto), L2 is Redis, and Tiered layers the two.
package cache

import (
	"context"
	"time"
)

// Cache is the storage contract used by the response cache.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores val under key. A zero ttl stores without expiry.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error

	// GetOrSet returns the value under key, calling load on a miss. Concurrent
	// misses for the same key share one load. A failed load is not stored.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error)
}

// Loader produces the value for a missing key.
type Loader func(ctx context.Context) ([]byte, error)
