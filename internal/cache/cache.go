// Package cache defines the best-effort key-value boundary used for
// query results. Correctness never depends on a Store: callers treat
// every error as a miss, and last-writer-wins on overlapping keys is
// acceptable because cached values are pure functions of their key.
package cache

import (
	"context"
	"time"
)

// Store is a key-value store with TTL writes and prefix invalidation.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set writes the value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
