package loginguard

import (
	"context"
	"fmt"
	"time"

	"cardealer-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares lockout state between API instances.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedisStore(client *redis.Client, window time.Duration) domain.LoginAttemptStore {
	return &RedisStore{client: client, window: window}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, lockPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) RegisterFailure(ctx context.Context, key string) (int, error) {
	k := failPrefix + key
	n, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, k, s.window).Err(); err != nil {
			return 0, err
		}
	}
	return int(n), nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, d time.Duration) error {
	return s.client.Set(ctx, lockPrefix+key, 1, d).Err()
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, failPrefix+key, lockPrefix+key).Err()
}
