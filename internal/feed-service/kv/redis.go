package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implementa Store sobre uma conexão Redis nativa
type RedisStore struct {
	R *redis.Client
}

func NewRedisStore(r *redis.Client) *RedisStore { return &RedisStore{R: r} }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.R.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	if len(b) == 0 {
		return nil, false, nil
	}
	return Normalize(b), true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv set %s: marshal: %w", key, err)
	}
	if err := s.R.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.R.Ping(ctx).Err()
}
