package httputil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stlplant/tankview/pkg/cache"
)

// JSONCache stores JSON-marshalable values in a [cache.Cache].
//
// Use [JSONCache.Namespace] to create scoped views that prefix keys:
//
//	lists := c.Namespace("lists:")
//	lists.Set(ctx, "customers", customers)  // key becomes "lists:customers"
type JSONCache struct {
	backend cache.Cache
	ttl     time.Duration
	prefix  string
}

// NewJSONCache wraps backend. Entries expire after ttl; zero means never.
// A nil backend disables caching.
func NewJSONCache(backend cache.Cache, ttl time.Duration) *JSONCache {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &JSONCache{backend: backend, ttl: ttl}
}

// TTL returns the time-to-live of new entries.
func (c *JSONCache) TTL() time.Duration { return c.ttl }

// Get unmarshals the cached value for key into v. It reports false on a
// miss and leaves v unchanged.
func (c *JSONCache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := c.backend.Get(ctx, c.prefix+key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set marshals v and stores it under key, resetting its TTL.
func (c *JSONCache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, c.prefix+key, data, c.ttl)
}

// Delete removes key.
func (c *JSONCache) Delete(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, c.prefix+key)
}

// Namespace returns a view that prefixes all keys with prefix. Namespaces
// chain: c.Namespace("a:").Namespace("b:") uses "a:b:".
func (c *JSONCache) Namespace(prefix string) *JSONCache {
	return &JSONCache{backend: c.backend, ttl: c.ttl, prefix: c.prefix + prefix}
}
