package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AlexanderWiman/verlo-websocket/domain/repositories"
)

// RedisConfig holds configuration for the Redis cache adapter.
// Required fields:
// - Addr: host:port of the Redis server
// Optional fields:
// - Password: Redis AUTH password
// - DB: logical database number (default 0)
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache implements TranslationCache backed by Redis. Per-key get/set
// with entry-level expiry; concurrent writers to the same key leave last
// write wins, which is fine because entries are deterministic
// reconstructions of the same translation.
type RedisCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

var _ repositories.TranslationCache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed translation cache.
func NewRedisCache(config RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	if config.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{rdb: rdb, logger: logger}, nil
}

// Get looks up a cached translation. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

// Set stores a translation with the given expiry.
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// NewRedisConfigFromEnv creates a RedisConfig from environment variables.
func NewRedisConfigFromEnv() RedisConfig {
	config := RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil && db >= 0 {
			config.DB = db
		}
	}

	return config
}
