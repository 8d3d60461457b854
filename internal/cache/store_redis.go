// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists cache entries as JSON envelopes under their key, with
// a native Redis TTL matching the entry's expires_at.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a shared Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (store *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := store.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: redis get failed: %w", err)
	}

	entry := &Entry{}
	if err := json.Unmarshal(raw, entry); err != nil {
		return nil, fmt.Errorf("cache: redis entry corrupt: %w", err)
	}
	return entry, nil
}

func (store *RedisStore) Set(ctx context.Context, entry *Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: redis entry encode failed: %w", err)
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		// Already expired at write time; nothing worth storing.
		return nil
	}

	if err := store.client.Set(ctx, entry.CacheKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set failed: %w", err)
	}
	return nil
}

func (store *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := store.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache: redis delete failed: %w", err)
	}
	return removed > 0, nil
}

func (store *RedisStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	// SCAN in batches rather than KEYS, which blocks the server on big keyspaces.
	var cursor uint64
	total := 0

	for {
		keys, nextCursor, err := store.client.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			return total, fmt.Errorf("cache: redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			removed, err := store.client.Del(ctx, keys...).Result()
			if err != nil {
				return total, fmt.Errorf("cache: redis batch delete failed: %w", err)
			}
			total += int(removed)
		}

		cursor = nextCursor
		if cursor == 0 {
			return total, nil
		}
	}
}

// DeleteExpired is a no-op: Redis evicts expired keys natively.
func (store *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
