package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrExceeded is returned once a user has used up the generations of the
// current window.
var ErrExceeded = errors.New("generation quota exceeded")

const keyPrefix = "quota:ai:"

// Limiter admits or rejects one AI generation for a user.
type Limiter interface {
	Consume(ctx context.Context, userID string) error
}

// Counter increments a key and gives it a TTL if it has none, as one
// atomic step.
type Counter interface {
	IncrWithin(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ConnectRedis parses a redis URL and returns a client.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// RedisLimiter is a fixed-window counter: INCR and EXPIRE NX run in one
// MULTI, so a counter can never outlive its window. Consumed units are
// never refunded.
type RedisLimiter struct {
	counter Counter
	max     int64
	window  time.Duration
}

// NewRedisLimiter creates a Limiter over a redis client.
func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return NewLimiter(clientCounter{client: client}, max, window)
}

// NewLimiter creates a RedisLimiter over any Counter.
func NewLimiter(counter Counter, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{counter: counter, max: int64(max), window: window}
}

func (l *RedisLimiter) Consume(ctx context.Context, userID string) error {
	key := keyPrefix + userID
	n, err := l.counter.IncrWithin(ctx, key, l.window)
	if err != nil {
		return fmt.Errorf("incrementing quota: %w", err)
	}
	if n > l.max {
		return ErrExceeded
	}
	return nil
}

// Unlimited admits every generation. Used when no redis URL is configured.
type Unlimited struct{}

func (Unlimited) Consume(context.Context, string) error { return nil }

type clientCounter struct {
	client *redis.Client
}

func (c clientCounter) IncrWithin(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
