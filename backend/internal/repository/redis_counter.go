package repository

import (
	"context"
	"errors"

	"depot-records/backend/internal/engine"
	"depot-records/backend/pkg/redis"
)

// incrementer 计数器所需的 *redis.Client 方法
type incrementer interface {
	Increment(ctx context.Context, name string) (int64, error)
}

type redisCounter struct {
	client incrementer
}

// NewRedisCounter 基于 Redis INCR 的 engine.Counter
func NewRedisCounter(client *redis.Client) engine.Counter {
	return &redisCounter{client: client}
}

func (c *redisCounter) Next(ctx context.Context, name string) (int64, error) {
	n, err := c.client.Increment(ctx, name)
	if errors.Is(err, redis.ErrOverflow) {
		return 0, engine.ErrSequenceExhausted
	}
	return n, err
}
