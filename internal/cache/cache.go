// Package cache provides the explicit cache component backing the product
// read-through cache. Invalidation rules live with the callers; this package
// only offers get/put/invalidate over JSON payloads.
package cache

import (
	"context"
	"time"
)

// Cache is a key-value snapshot store with TTL. Implementations must make a
// completed Put or Invalidate visible to subsequent Gets: a caller that
// invalidates before reporting success to its own caller never leaks a stale
// read.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}
