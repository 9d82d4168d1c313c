package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage keeps every client scope in one redis hash. The hash expires after
// ttl without writes, so abandoned clients do not accumulate.
type Storage struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStorage wraps client. A zero ttl disables expiry.
func NewStorage(client redis.UniversalClient, ttl time.Duration) (*Storage, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if ttl < 0 {
		return nil, errors.New("ttl cannot be negative")
	}
	return &Storage{client: client, ttl: ttl}, nil
}

// Get reads one field of the scope hash.
func (s *Storage) Get(ctx context.Context, scope, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, scope, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, true, nil
}

// Put sets all entries with a single HSET inside MULTI/EXEC, together with the idle expiry.
func (s *Storage) Put(ctx context.Context, scope string, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(entries)*2)
	for k, v := range entries {
		values = append(values, k, v)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, scope, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, scope, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Remove deletes fields; redis drops the hash once it is empty.
func (s *Storage) Remove(ctx context.Context, scope string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, scope, keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

// Ping checks the redis connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
