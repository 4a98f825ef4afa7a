package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/reverie/internal/config"
)

// NewRedis connects to the Redis instance that holds login sessions. Like
// MariaDB it may come up after the app, so the first ping is retried.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := pingWithRetry("redis", 5, ping); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
