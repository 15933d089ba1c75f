package rmsinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/rms/resolver/rms"
	"github.com/redis/go-redis/v9"
)

const responseCachePrefix = "rms:respcache:"

// RedisResponseCache caches raw model responses keyed by prompt hash.
// A cache entry short-circuits the model call on first attempts only;
// the retry policy lives in the service, not here.
type RedisResponseCache struct {
	client *redis.Client
}

func NewRedisResponseCache(client *redis.Client) rms.ResponseCache {
	return &RedisResponseCache{client: client}
}

// Get returns the cached response for key. A miss reports ok=false with
// a nil error; only transport faults surface as errors.
func (c *RedisResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, responseCachePrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("response cache get: %w", err)
	}
	return value, true, nil
}

// Set stores a raw response with the given TTL
func (c *RedisResponseCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, responseCachePrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("response cache set: %w", err)
	}
	return nil
}
