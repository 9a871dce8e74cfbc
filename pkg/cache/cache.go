// Package cache provides byte-level caching for API responses and rendered
// layouts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MongoCache]: a MongoDB collection, for shared server deployments
//   - [RedisCache]: Redis strings with native expiry
//   - [NullCache]: never stores anything
//
// Wrap any backend with [Instrument] to report hits, misses and writes to
// the observability cache hooks.
//
// # Keys
//
// A [Keyer] derives stable keys from request parameters. [NewScopedKeyer]
// prefixes every key, which keeps entries of different backends or tenants
// apart in a shared store.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
