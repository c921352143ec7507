package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const slidingWindow = time.Minute

// WindowedCounter counts request events inside a sliding time window.
// Increment must prune expired events, record the new one, and return the
// count atomically so concurrent requests cannot undercount each other.
type WindowedCounter interface {
	Increment(ctx context.Context, key string, at time.Time) (int64, error)
}

// RedisWindowedCounter keeps one sorted set per key, scored by event
// timestamp in milliseconds. A pipelined ZREMRANGEBYSCORE + ZADD + ZCARD
// gives the prune-record-count sequence in a single round trip.
type RedisWindowedCounter struct {
	client *redis.Client
}

func NewRedisWindowedCounter(client *redis.Client) *RedisWindowedCounter {
	return &RedisWindowedCounter{client: client}
}

func (c *RedisWindowedCounter) Increment(ctx context.Context, key string, at time.Time) (int64, error) {
	now := at.UnixMilli()
	cutoff := now - slidingWindow.Milliseconds()

	pipe := c.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: fmt.Sprintf("%d", now)})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, slidingWindow)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit counter: %w", err)
	}
	return card.Val(), nil
}
