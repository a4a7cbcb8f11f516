package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage implements storage.Storage on top of Redis string keys.
type Storage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStorage creates a Redis-backed storage. Every key is stored as
// prefix+key. A zero ttl keeps values until they are overwritten.
func NewStorage(client *redis.Client, prefix string, ttl time.Duration) *Storage {
	return &Storage{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get reads the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes value under key with the configured TTL.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
