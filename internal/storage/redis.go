package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"textrpg/server/internal/config"
)

type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return newRedisStore(client, cfg.KeyPrefix), nil
}

func newRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(slot string) string {
	return s.keyPrefix + "save:" + slot
}

// Save slots never expire
func (s *RedisStore) Save(ctx context.Context, slot string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(slot), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write save slot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, slot string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save slot: %w", err)
	}
	return payload, nil
}
