// Package cache provides the best-effort serving cache in front of
// derivative generation. Backing-store trouble degrades to a miss; nothing
// here ever fails a request.
package cache

import (
	"context"
	"time"
)

// Cache is a capability interface: TryGet reports found/not-found instead
// of returning errors, and TrySet is fire-and-forget.
type Cache interface {
	TryGet(ctx context.Context, key string) ([]byte, bool)
	TrySet(ctx context.Context, key string, value []byte, ttl time.Duration)
}
