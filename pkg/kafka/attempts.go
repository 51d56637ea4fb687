package kafka

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAttemptCounter keeps attempt counts in Redis for a day.
type RedisAttemptCounter struct {
	rdb *redis.Client
}

func NewRedisAttemptCounter(rdb *redis.Client) *RedisAttemptCounter {
	return &RedisAttemptCounter{rdb: rdb}
}

func (r *RedisAttemptCounter) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = r.rdb.Expire(ctx, key, 24*time.Hour).Err()
	return n, nil
}

func (r *RedisAttemptCounter) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
