package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys in a shared Redis
const DefaultRedisPrefix = "shario-admin:"

// RedisStorage implements Storage using Redis
type RedisStorage struct {
	client redis.Cmdable
	prefix string
	logger *logging.ContextLogger
}

// NewRedisStorage creates a Redis storage over an existing client
func NewRedisStorage(client redis.Cmdable, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{
		client: client,
		prefix: prefix,
		logger: logging.GetDefault().Component("session"),
	}
}

// NewRedisStorageFromURL parses redisURL, connects and pings the server
func NewRedisStorageFromURL(redisURL string) (*RedisStorage, error) {
	logger := logging.GetDefault().Component("session")
	ctx := context.Background()

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.WithField("redis_url", redisURL).Error(ctx, "Failed to parse Redis URL", err)
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	testCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(testCtx).Err(); err != nil {
		logger.WithField("redis_url", redisURL).Error(testCtx, "Failed to connect to Redis", err)
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithField("storage_type", "redis").Info(ctx, "Session storage ready")

	return NewRedisStorage(client, DefaultRedisPrefix), nil
}

// Get returns the value stored under key
func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		r.logger.WithField("key", r.prefix+key).Error(ctx, "Failed to read session key from Redis", err)
		return "", false, apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to read session key")
	}
	return value, true, nil
}

// Set stores value under key without expiry
func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		r.logger.WithField("key", r.prefix+key).Error(ctx, "Failed to write session key to Redis", err)
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to write session key")
	}
	return nil
}

// Remove deletes the given keys
func (r *RedisStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefix + key
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		r.logger.WithField("keys", prefixed).Error(ctx, "Failed to remove session keys from Redis", err)
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to remove session keys")
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisStorage) Close() error {
	if client, ok := r.client.(*redis.Client); ok {
		return client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
