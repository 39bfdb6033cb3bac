package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/redis/go-redis/v9"
)

// Cache provides 2-tier caching: L1 in-memory (ristretto) + L2 Redis.
// L1 is fast but lost on restart. L2 survives restarts.
var videoCache *tieredCache

var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type tieredCache struct {
	l1  *ristretto.Cache[string, []byte]
	rdb *redis.Client // nil if Redis unavailable
	ttl time.Duration
}

// InitCache sets up the 2-tier cache. Call after Init().
// redisURL can be empty to disable L2. maxBytes bounds the L1 size.
func InitCache(redisURL string, ttl time.Duration, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	l1, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return fmt.Errorf("cache: ristretto init: %w", err)
	}
	c := &tieredCache{l1: l1, ttl: ttl}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	if videoCache != nil {
		videoCache.close()
	}
	videoCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int64("max_bytes", maxBytes))
	return nil
}

// CloseCache releases the L1 cache and the Redis connection.
func CloseCache() {
	if videoCache != nil {
		videoCache.close()
		videoCache = nil
	}
}

func (c *tieredCache) close() {
	c.l1.Close()
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("yc:%x", hash[:12]) // 24-char hex prefix
}

// CacheGet tries L1, then L2. On L2 hit, populates L1.
func CacheGet(ctx context.Context, key string) ([]byte, bool) {
	if videoCache == nil {
		cacheMisses.Add(1)
		return nil, false
	}

	if data, ok := videoCache.l1.Get(key); ok {
		slog.Debug("cache: L1 hit", slog.String("key", key))
		cacheHits.Add(1)
		return data, true
	}

	if videoCache.rdb != nil {
		data, err := videoCache.rdb.Get(ctx, key).Bytes()
		if err == nil {
			slog.Debug("cache: L2 hit", slog.String("key", key))
			cacheHits.Add(1)
			videoCache.l1.SetWithTTL(key, data, int64(len(data)), videoCache.ttl)
			return data, true
		}
	}

	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores value in both L1 and L2.
func CacheSet(ctx context.Context, key string, data []byte) {
	if videoCache == nil {
		return
	}

	videoCache.l1.SetWithTTL(key, data, int64(len(data)), videoCache.ttl)
	// ristretto applies sets asynchronously; make the value visible to the next Get.
	videoCache.l1.Wait()

	if videoCache.rdb != nil {
		if err := videoCache.rdb.Set(ctx, key, data, videoCache.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// CacheLoadJSON tries to load a cached value of type T.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	var out T
	data, ok := CacheGet(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSet(ctx, key, data)
}
