// Package cache provides the read cache used in front of per-event checklist
// queries. Values are stored JSON-encoded so that the in-process and Redis
// backends behave the same way.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encoded values by key.
type Cache interface {
	// Get decodes the value stored under key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments the integer stored under key, starting from
	// zero, and returns the new value. Counters do not expire.
	Incr(ctx context.Context, key string) (int64, error)
}
