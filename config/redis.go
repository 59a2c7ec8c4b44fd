package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to REDIS_ADDR. It returns nil, nil when Redis is not
// configured; callers treat a nil client as "cache disabled".
func InitRedis(ctx context.Context, s *Settings) (*redis.Client, error) {
	if s.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", s.RedisAddr, err)
	}
	Logger().Infow("redis connected", "addr", s.RedisAddr)
	return rdb, nil
}
