// Package cache holds TTL-bounded results of upstream recipe queries.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Default TTLs for upstream result caches.
const (
	SearchTTL     = 30 * time.Minute
	SuggestionTTL = 60 * time.Minute
)

// ResultCache is a typed view over a Store with a fixed TTL. An entry is fresh
// while now - storedAt < TTL. Stale entries are ignored, not deleted.
type ResultCache[T any] struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// New creates a ResultCache. A nil now uses time.Now.
func New[T any](store Store, ttl time.Duration, now func() time.Time) *ResultCache[T] {
	if now == nil {
		now = time.Now
	}
	return &ResultCache[T]{store: store, ttl: ttl, now: now}
}

// TTL returns the freshness window.
func (c *ResultCache[T]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value stored under key when it is still fresh.
func (c *ResultCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	if c.now().Sub(entry.StoredAt) >= c.ttl {
		return zero, false, nil
	}
	var v T
	if err := json.Unmarshal(entry.Value, &v); err != nil {
		return zero, false, fmt.Errorf("decode cached value %s: %w", key, err)
	}
	return v, true, nil
}

// Put overwrites key with value, timestamped now.
func (c *ResultCache[T]) Put(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for cache %s: %w", key, err)
	}
	return c.store.Set(ctx, key, Entry{Value: data, StoredAt: c.now()})
}

// Key joins parts in the given order and lowercases the result, so callers
// must pass parameters in a fixed order.
func Key(parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	return strings.ToLower(strings.Join(trimmed, "-"))
}
