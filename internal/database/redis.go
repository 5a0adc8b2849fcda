package database

import (
	"context"
	"fmt"
	"time"

	"cdr.dev/slog/v3"
	"github.com/redis/go-redis/v9"
)

// RedisPingTimeout bounds the startup connectivity check.
const RedisPingTimeout = 5 * time.Second

// NewRedisClient connects to the token cache. The URL carries the password,
// so only the address and db index are ever logged.
func NewRedisClient(ctx context.Context, logger slog.Logger, redisURL string) (*redis.Client, error) {
	logger = logger.Named("redis")

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error(ctx, "invalid redis url", slog.Error(err))
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}
	fields := []slog.Field{slog.F("addr", opts.Addr), slog.F("db", opts.DB)}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, RedisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Error(ctx, "redis unreachable", append(fields, slog.Error(err))...)
		return nil, fmt.Errorf("error pinging redis at %s: %w", opts.Addr, err)
	}

	logger.Info(ctx, "redis client created", fields...)
	return client, nil
}
