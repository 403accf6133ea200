package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

const redisKeyPrefix = "cat0:cooldown:"

// RedisStore shares cooldowns between API instances.
type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	k := redisKeyPrefix + key

	ok, err := s.rdb.SetNX(ctx, k, time.Now().UnixMilli(), ttl).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis setnx: %w", err)
	}

	if ok {
		return true, 0, nil
	}

	left, err := s.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis pttl: %w", err)
	}

	// -2: key vanished, -1: no expiry; neither leaves a meaningful wait
	if left < 0 {
		left = 0
	}

	return false, left, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	err := s.rdb.Del(ctx, redisKeyPrefix+key).Err()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
