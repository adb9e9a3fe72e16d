package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisCache stores raw byte values with per-key TTLs via SETEX semantics.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
	}
}

func (c *RedisCache) TryGet(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("key", key).Debug("Cache read failed")
		}
		return nil, false
	}
	return data, true
}

func (c *RedisCache) TrySet(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Debug("Cache write failed")
	}
}
