package redisutil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fastprodman/cat0presale/internal/config"
	"github.com/redis/go-redis/v9"
)

// Connect returns a client for cfg.Addr after a successful PING.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := rdb.Ping(ctx).Err()
	if err != nil {
		_ = rdb.Close()

		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}

	slog.Info("connected to redis", "addr", cfg.Addr, "db", cfg.DB)

	return rdb, nil
}
