package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const limiterPrefix = "ratelimit:"

// RateLimiter allows at most limit calls per key in each fixed window.
// Counters live in Redis so every API replica shares them.
type RateLimiter struct {
	db     *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a RateLimiter on c.
func NewRateLimiter(c *Cache, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{db: c.Db, limit: int64(limit), window: window}
}

// Allow counts one call for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	const op = "cache.RateLimiter.Allow"

	k := limiterPrefix + key
	var incr *redis.IntCmd
	_, err := l.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return incr.Val() <= l.limit, nil
}
