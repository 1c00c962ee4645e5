// Package ratelimit implements fixed-window request counting on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		slog.Error("redis connection failed", "address", cfg.Addr, "error", err)
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	slog.Info("redis connection successful", "address", cfg.Addr)
	return rdb, nil
}

// Limiter allows at most limit hits per key within each window.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewLimiter creates a Limiter. Keys are stored under prefix.
func NewLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

func (l *Limiter) key(id string) string {
	return fmt.Sprintf("%s:%s", l.prefix, id)
}

// Allow records a hit for id and reports whether it is within the limit.
// The window starts with the first hit and the counter expires with it. A
// counter found without a TTL gets one, so a failed EXPIRE cannot pin a key.
func (l *Limiter) Allow(ctx context.Context, id string) (bool, error) {
	key := l.key(id)

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return false, fmt.Errorf("failed to count hit for %s: %w", key, err)
	}

	// -1 means the key exists without an expiry.
	if ttl.Val() == -1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set window for %s: %w", key, err)
		}
	}

	return incr.Val() <= l.limit, nil
}
