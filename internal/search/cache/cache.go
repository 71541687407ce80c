// internal/search/cache/cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"intelligence-workers/internal/common/logger"
	"intelligence-workers/internal/common/metrics"
)

// DefaultTTL bounds how long a cached episode stays servable, independent
// of search mode.
const DefaultTTL = 30 * time.Minute

// ErrMiss is returned by stores when a key has no entry.
var ErrMiss = errors.New("cache miss")

// entry is the stored envelope: payload plus creation time. TTL is
// enforced on read so a store with its own expiry is not required.
type entry struct {
	CreatedAt time.Time       `json:"createdAt"`
	Payload   json.RawMessage `json:"payload"`
}

// Store is the key-value collaborator behind the cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore backs the cache with Redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return val, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// MemoryStore is the in-process store used in tests and when Redis is not
// configured. Last writer wins on concurrent upsert.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return val, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	return nil
}

// Cache wraps a Store with the envelope format and read-side TTL check.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

func New(store Store, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
		now:    time.Now,
	}
}

// Key derives the cache key from the normalized query and mode.
func Key(query, mode string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized + "|" + mode))
	return "search:episode:" + hex.EncodeToString(sum[:])
}

// Get returns the cached payload and its age. Expired or malformed entries
// read as misses.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, time.Duration, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
		}
		metrics.SearchCacheMisses.Inc()
		return nil, 0, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		metrics.SearchCacheMisses.Inc()
		return nil, 0, false
	}

	age := c.now().UTC().Sub(e.CreatedAt)
	if age > c.ttl {
		metrics.SearchCacheMisses.Inc()
		return nil, 0, false
	}

	metrics.SearchCacheHits.Inc()
	return e.Payload, age, true
}

// Upsert stores a fresh payload. Failures are logged, never propagated:
// caching is an optimization, not a dependency.
func (c *Cache) Upsert(ctx context.Context, key string, payload json.RawMessage) {
	raw, err := json.Marshal(entry{CreatedAt: c.now().UTC(), Payload: payload})
	if err != nil {
		c.logger.Warn("cache encode failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
