package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a TTL key-value cache. It is the only state shared across
// requests; everything else is built fresh per request.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	PutWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache backs Cache with Redis. Keys are namespaced by prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) PutWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}
