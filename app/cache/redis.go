package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON document per href. Expiry is delegated to
// Redis key TTLs, so Purge has nothing to do.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisStore(ctx context.Context, addr string, retention time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &RedisStore{
		client:    client,
		retention: retention,
	}, nil
}

// FeedKey derives a short stable key for a feed href.
func FeedKey(href string) string {
	hash := sha256.Sum256([]byte(href))
	return fmt.Sprintf("feed:%x", hash[:8])
}

func (s *RedisStore) Get(ctx context.Context, href string) (*Record, error) {
	key := FeedKey(href)

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil || record.Href != href {
		// Unreadable or colliding payloads are treated as a miss
		if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
			slog.Warn("Failed to delete invalid cache entry", "key", key, "error", delErr)
		}
		return nil, nil
	}

	return &record, nil
}

func (s *RedisStore) Put(ctx context.Context, href string, record *Record) error {
	stored := record.Clone()
	stored.Href = href

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal record for %s: %w", href, err)
	}

	key := FeedKey(href)
	if err := s.client.Set(ctx, key, data, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, href string) error {
	key := FeedKey(href)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Purge(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
