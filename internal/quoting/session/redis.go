package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "quote:session:"

// RedisStore keeps each session as one Redis hash, one field per slot.
// Every write refreshes the hash TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *RedisStore) Set(ctx context.Context, sessionID string, slot Slot, value string) error {
	key := r.key(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, string(slot), value)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session set %s: %w", slot, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, sessionID string, slot Slot) (string, error) {
	value, err := r.client.HGet(ctx, r.key(sessionID), string(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session get %s: %w", slot, err)
	}
	return value, nil
}

func (r *RedisStore) Remove(ctx context.Context, sessionID string, slot Slot) error {
	if err := r.client.HDel(ctx, r.key(sessionID), string(slot)).Err(); err != nil {
		return fmt.Errorf("session remove %s: %w", slot, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
