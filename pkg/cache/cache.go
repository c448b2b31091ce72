// Package cache provides the two cache tiers used by the graph pipeline.
//
// The durable tier is expressed by the Cache interface: an abstract persistent
// key-value store with per-entry TTLs. Implementations:
//   - FileCache: file-based storage for CLI usage
//   - RedisCache: Redis-backed storage for multi-instance deployments
//   - NullCache: no-op cache for tests or when caching is disabled
//
// The memory tier is the Memory type: a small, bounded, TTL-checked map used
// for short-lived graph results keyed by graph kind. It is owned by its
// caller, never global, so multiple repositories can be served without
// cross-talk.
package cache

import (
	"context"
	"time"
)

// Default tuning values for the two tiers.
const (
	// DefaultMemoryTTL is how long an in-memory graph entry stays fresh.
	DefaultMemoryTTL = 30 * time.Second

	// DefaultMemoryCapacity bounds the number of in-memory entries.
	DefaultMemoryCapacity = 100

	// DefaultSnapshotTTL is the durable lifetime of a graph snapshot.
	// Snapshots are anchored at a head hash and stay valid until evicted
	// from the snapshot index, so the TTL is generous.
	DefaultSnapshotTTL = 30 * 24 * time.Hour
)

// Cache is the interface for durable cache backends.
// Get returns (data, hit, error): a miss is (nil, false, nil), and backends
// must not return an error for a plain miss.
type Cache interface {
	// Get retrieves a value from the cache.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
