package notifier

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minicars/reserve/internal/redisx"
)

type RedisCache struct{ RDB *redis.Client }

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	return redisx.Exists(ctx, c.RDB, key)
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.RDB.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.RDB.Del(ctx, key).Err()
}
