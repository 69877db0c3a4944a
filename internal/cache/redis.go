// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides the Redis backend of the embedding cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/pdiddy/research-analytics/internal/embedding"
)

var _ embedding.KV = (*RedisStore)(nil)

// RedisStore stores embedding cache entries in Redis via rueidis.
type RedisStore struct {
	client rueidis.Client
	ttl    time.Duration
}

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// TTL expires entries; zero keeps them until evicted.
	TTL time.Duration
}

// NewRedisStore connects to Redis.
func NewRedisStore(cfg Config) (*RedisStore, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis address is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client rueidis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get implements embedding.KV.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.client.B().Get().Key(key).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, embedding.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return data, nil
}

// Set implements embedding.KV.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	var cmd rueidis.Completed
	if s.ttl > 0 {
		cmd = s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(s.ttl).Build()
	} else {
		cmd = s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *RedisStore) Close() {
	s.client.Close()
}
