// Package redisx provides Redis connection infrastructure.
// This is part of the platform layer and contains no business logic.
package redisx

import (
	"context"
	"fmt"

	"bosfinder_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewClient creates and verifies a Redis client connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}
