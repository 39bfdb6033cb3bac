package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, CacheKey("transcript", "dQw4w9WgXcQ"), CacheKey("transcript", "dQw4w9WgXcQ"))
	})

	t.Run("different inputs differ", func(t *testing.T) {
		assert.NotEqual(t, CacheKey("transcript", "aaaaaaaaaaa"), CacheKey("transcript", "bbbbbbbbbbb"))
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		assert.True(t, strings.HasPrefix(k, "yc:"), k)
		assert.Len(t, k, 3+24)
	})
}

func TestCacheGetSet(t *testing.T) {
	require.NoError(t, InitCache("", time.Minute, 1<<20))
	t.Cleanup(CloseCache)

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	_, ok := CacheGet(ctx, key)
	assert.False(t, ok, "expected miss on empty cache")

	CacheStoreJSON(ctx, key, VideoMeta{Title: "Build a REST API", Description: "By Dev"})

	got, ok := CacheLoadJSON[VideoMeta](ctx, key)
	require.True(t, ok, "expected hit after set")
	assert.Equal(t, "Build a REST API", got.Title)
}

func TestCacheLoadJSONDecodeError(t *testing.T) {
	require.NoError(t, InitCache("", time.Minute, 1<<20))
	t.Cleanup(CloseCache)

	ctx := context.Background()
	key := CacheKey("test", "garbage")
	CacheSet(ctx, key, []byte("{not json"))

	_, ok := CacheLoadJSON[VideoMeta](ctx, key)
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	CloseCache()
	ctx := context.Background()
	key := CacheKey("disabled")

	CacheSet(ctx, key, []byte("x"))
	_, ok := CacheGet(ctx, key)
	assert.False(t, ok)
}

func TestCacheStats(t *testing.T) {
	require.NoError(t, InitCache("", time.Minute, 1<<20))
	t.Cleanup(CloseCache)
	cacheHits.Store(0)
	cacheMisses.Store(0)

	ctx := context.Background()
	key := CacheKey("stats", "test")

	CacheGet(ctx, key)
	_, misses := CacheStats()
	assert.Equal(t, int64(1), misses)

	CacheSet(ctx, key, []byte("x"))
	CacheGet(ctx, key)

	hits, misses := CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}
