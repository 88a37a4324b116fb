package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a JSON cache on top of Redis. A nil client turns every call into a
// miss so the API keeps working without Redis.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

func New(client *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// Connect pings addr and returns nil when Redis is not reachable.
func Connect(ctx context.Context, addr string, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not available. Running without Redis.", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	logger.Info("Redis connected successfully.", zap.String("addr", addr))
	return client
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the value stored at key into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// GetVersion returns the counter at versionKey, 0 when unset or unavailable.
func (c *Cache) GetVersion(ctx context.Context, versionKey string) int64 {
	if !c.enabled() {
		return 0
	}
	v, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

// IncrementVersion bumps versionKey so keys built from the old version are never read again.
func (c *Cache) IncrementVersion(ctx context.Context, versionKey string) {
	if !c.enabled() {
		return
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Warn("Cache version bump failed", zap.String("key", versionKey), zap.Error(err))
	}
}
