package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"organizer/internal/domain/repository"

	"github.com/go-redis/redis/v8"
)

// Options configures the Redis-backed store.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Prepended to every key
}

type kvStore struct {
	client *redis.Client
	prefix string
}

// NewKVStore connects to Redis and returns a KeyValueStore on top of it.
func NewKVStore(ctx context.Context, opts Options) (repository.KeyValueStore, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &kvStore{client: client, prefix: opts.Prefix}, client, nil
}

// NewKVStoreFromClient wraps an existing client.
func NewKVStoreFromClient(client *redis.Client, prefix string) repository.KeyValueStore {
	return &kvStore{client: client, prefix: prefix}
}

func (s *kvStore) key(k string) string {
	return s.prefix + k
}

// Get retrieves the value stored under key.
func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key; absent keys are ignored.
func (s *kvStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
