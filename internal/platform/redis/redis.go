package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"gemini-relay-bot/internal/common/logger"
)

// Client is the subset of go-redis the bot uses. *redis.Client satisfies it.
type Client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

var _ Client = (*redis.Client)(nil)

// Open creates a client and waits until the server answers a PING.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}

	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	backoff := retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", addr).Msg("Redis not ready, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info().Str("addr", addr).Int("db", db).Msg("Redis client initialized")
	return c, nil
}
