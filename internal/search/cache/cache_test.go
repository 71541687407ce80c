// internal/search/cache/cache_test.go
package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelligence-workers/internal/common/logger"
)

func TestKeyNormalization(t *testing.T) {
	base := Key("Acme Corp news", "focused")

	assert.Equal(t, base, Key("acme corp news", "focused"))
	assert.Equal(t, base, Key("  Acme   Corp news ", "focused"))
	assert.NotEqual(t, base, Key("Acme Corp news", "comprehensive"))
	assert.NotEqual(t, base, Key("different query", "focused"))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	c := New(NewMemoryStore(), DefaultTTL, logger.NewTestLogger(t))
	ctx := context.Background()

	key := Key("query", "focused")
	payload := json.RawMessage(`{"totalResults":3}`)

	_, _, hit := c.Get(ctx, key)
	assert.False(t, hit)

	c.Upsert(ctx, key, payload)

	got, age, hit := c.Get(ctx, key)
	require.True(t, hit)
	assert.JSONEq(t, string(payload), string(got))
	assert.GreaterOrEqual(t, age, time.Duration(0))
}

func TestCacheExpiresOnRead(t *testing.T) {
	c := New(NewMemoryStore(), 30*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	key := Key("query", "focused")
	c.Upsert(ctx, key, json.RawMessage(`{"ok":true}`))

	c.now = func() time.Time { return now.Add(29 * time.Minute) }
	_, age, hit := c.Get(ctx, key)
	assert.True(t, hit)
	assert.Equal(t, 29*time.Minute, age)

	c.now = func() time.Time { return now.Add(31 * time.Minute) }
	_, _, hit = c.Get(ctx, key)
	assert.False(t, hit)
}

func TestCacheMalformedEntryReadsAsMiss(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, DefaultTTL, logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "bad-key", []byte("not json"), DefaultTTL))

	_, _, hit := c.Get(ctx, "bad-key")
	assert.False(t, hit)
}

func TestCacheLastWriterWins(t *testing.T) {
	c := New(NewMemoryStore(), DefaultTTL, logger.NewTestLogger(t))
	ctx := context.Background()
	key := Key("query", "quick")

	c.Upsert(ctx, key, json.RawMessage(`{"version":1}`))
	c.Upsert(ctx, key, json.RawMessage(`{"version":2}`))

	got, _, hit := c.Get(ctx, key)
	require.True(t, hit)
	assert.JSONEq(t, `{"version":2}`, string(got))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), val)
}

func TestRedisBackedCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := New(NewRedisStore(client), DefaultTTL, logger.NewTestLogger(t))
	ctx := context.Background()
	key := Key("redis backed query", "focused")

	c.Upsert(ctx, key, json.RawMessage(`{"totalResults":1}`))

	got, _, hit := c.Get(ctx, key)
	require.True(t, hit)
	assert.JSONEq(t, `{"totalResults":1}`, string(got))
}
