// internal/cache/redis.go
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "clinovia-inference/internal/common/errors"
)

const redisKeyPrefix = "assessment:result:"

// RedisCache stores results in Redis with a TTL, sharing state across
// replicas. Backend failures surface as retryable cache errors; the caller
// decides whether to degrade to a fresh computation.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed result cache. A zero TTL means
// entries never expire.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewCacheBackendFailedError(err)
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err(); err != nil {
		return apperrors.NewCacheBackendFailedError(err)
	}
	return nil
}

// Clear removes every cached result, leaving unrelated keys in the same
// database untouched.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return apperrors.NewCacheBackendFailedError(err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewCacheBackendFailedError(err)
	}
	return nil
}
