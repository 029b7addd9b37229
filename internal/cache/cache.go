// Package cache provides a small read-through cache for hot lookups
// (service catalog, checkout sessions). A Redis backend is used when
// REDIS_URL is configured; otherwise an in-process store serves the same
// interface, so callers never branch on the deployment.
package cache

import (
	"context"
	"time"

	"agency-platform/internal/logging"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// New connects to Redis when url is non-empty and reachable, falling back
// to the in-process cache otherwise.
func New(url string) Cache {
	if url == "" {
		return newMemory()
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logging.L().Warn("invalid REDIS_URL, using in-process cache", zap.Error(err))
		return newMemory()
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logging.L().Warn("redis unreachable, using in-process cache", zap.Error(err))
		return newMemory()
	}
	return &redisCache{client: client}
}

type redisCache struct {
	client *redis.Client
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logging.L().Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, key).Err()
}
