package cache

import (
	"context"
	"time"
)

// NullCache stores nothing and always misses, so every pipeline run
// replays, lays out, and renders from scratch. It is what --no-cache
// and the "none" cache backend plug in.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always misses.
func (*NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the entry.
func (*NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (*NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close is a no-op.
func (*NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
