// Package cache stores immutable intermediate results: repository service
// responses for a commit, dependency graphs and computed layouts.
//
// Backends share the byte-oriented [Cache] interface:
//
//   - [MemoryCache]: in-process LRU, the gateway default
//   - [FileCache]: one JSON file per key, the CLI default
//   - [RedisCache]: shared across gateway instances
//   - [MongoCache]: TTL-indexed collection
//   - [NullCache]: caching disabled
//
// Execution snapshots are never cached; they change while polled.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TTLs for the kinds of data blueprint caches.
const (
	// TTLCommit applies to commit-scoped responses, which never change.
	TTLCommit = 7 * 24 * time.Hour
	// TTLListing applies to repository and commit listings.
	TTLListing = time.Minute
	// TTLLayout applies to graphs and layouts keyed by content hash.
	TTLLayout = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A ttl of 0 means no expiry.
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and decodes it into v. A corrupt entry counts as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
