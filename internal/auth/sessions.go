package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minicars/reserve/internal/redisx"
)

// Sessions tracks which issued tokens are still live, so logout can kill a
// token before its JWT expiry.
type Sessions interface {
	Put(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Delete(ctx context.Context, tokenID string) error
}

type RedisSessions struct{ RDB *redis.Client }

func (s *RedisSessions) Put(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.RDB.Set(ctx, fmt.Sprintf(redisx.KeySession, tokenID), userID, ttl).Err()
}

func (s *RedisSessions) Exists(ctx context.Context, tokenID string) (bool, error) {
	return redisx.Exists(ctx, s.RDB, fmt.Sprintf(redisx.KeySession, tokenID))
}

func (s *RedisSessions) Delete(ctx context.Context, tokenID string) error {
	return s.RDB.Del(ctx, fmt.Sprintf(redisx.KeySession, tokenID)).Err()
}
