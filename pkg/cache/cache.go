// Package cache stores derived layout data: computed layouts and rendered
// artifacts.
//
// Everything in a cache can be recomputed from a layout document, so every
// backend may drop entries at will. Four backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MemoryCache]: a bounded LRU, for a single server process
//   - [RedisCache]: shared between server replicas
//   - [NullCache]: caches nothing
//
// Keys come from a [Keyer] so that every component hashes the same inputs
// the same way.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. A miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}
