// Package cache holds the TTL key-value stores that back response caching.
// Every implementation is best-effort: failures are logged and reported to
// callers as misses.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values under string keys with a per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Nop) Put(context.Context, string, []byte, time.Duration) {}
