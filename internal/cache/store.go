package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is a stored value plus the time it was written.
type Entry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

// Store is the raw key-value backend behind a ResultCache. Get reports
// ok=false when the key is absent. Freshness is decided by the caller.
type Store interface {
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry Entry) error
}

// MemoryStore is a process-local Store. Entries are never evicted; stale
// ones are simply ignored by the cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

// Len returns the number of stored entries, fresh or stale.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RedisStore keeps entries in Redis under a key prefix. Each write carries a
// retention expiry so abandoned keys do not accumulate forever; retention
// should be at least the longest TTL of any cache using the store.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewRedisStore creates a RedisStore. A zero retention keeps keys until
// they are overwritten.
func NewRedisStore(client redis.UniversalClient, prefix string, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, retention: retention}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, data, s.retention).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
