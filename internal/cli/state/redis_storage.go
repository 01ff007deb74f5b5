package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the configuration for the redis-backed token slot.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// DefaultRedisConfig returns a RedisConfig sized for a single interactive client.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     2,
	}
}

// RedisStorage implements Storage using go-redis. Expiry is enforced by redis.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage connects and pings redis.
func NewRedisStorage(config *RedisConfig) (*RedisStorage, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("addr cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStorage{client: client, prefix: config.KeyPrefix}, nil
}

// NewRedisStorageWithClient wraps an existing redis.Client.
func NewRedisStorageWithClient(client *redis.Client, prefix string) (*RedisStorage, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	return &RedisStorage{client: client, prefix: prefix}, nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

func (r *RedisStorage) Get(ctx context.Context, key string) (Entry, bool, error) {
	fullKey := r.prefix + key
	value, err := r.client.Get(ctx, fullKey).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get failed: %w", err)
	}
	entry := Entry{Value: value}
	ttl, err := r.client.PTTL(ctx, fullKey).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis pttl failed: %w", err)
	}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	return entry, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, entry Entry) error {
	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
		if ttl <= 0 {
			return r.Delete(ctx, key)
		}
	}
	if err := r.client.Set(ctx, r.prefix+key, entry.Value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
