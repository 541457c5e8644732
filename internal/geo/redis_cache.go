package geo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"tradematch_backend/internal/logger"
)

// RedisCache shares resolved postcodes across instances. Redis expires keys
// itself, which matches the lazy-eviction contract: nothing sweeps, entries
// just stop being returned.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

type redisEntry struct {
	Found  bool    `json:"found"`
	Result *Result `json:"result,omitempty"`
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Result, bool) {
	raw, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.CtxWarn(ctx, "geocode cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if !entry.Found {
		return nil, true // cached negative lookup
	}
	return entry.Result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result *Result) {
	raw, err := json.Marshal(redisEntry{Found: result != nil, Result: result})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.cacheKey(key), raw, c.ttl).Err(); err != nil {
		logger.CtxWarn(ctx, "geocode cache write failed", "key", key, "error", err)
	}
}

func (c *RedisCache) cacheKey(key string) string {
	return "geocode:" + key
}
