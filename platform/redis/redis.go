// Package redis provides the shared Redis client constructor.
// This is part of the platform layer and contains no business logic.
package redis

import (
	"context"

	"github.com/xtaxx12/BGR-SHRIMP/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis using the configured URL and verifies the
// connection with a ping before handing it out.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
