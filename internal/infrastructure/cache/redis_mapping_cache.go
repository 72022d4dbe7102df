package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/catalog"
)

const defaultMappingKeyPrefix = "storefront:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisMappingCache implements MappingCache on Redis so every instance
// sees a mapping learned by any other
type RedisMappingCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisMappingCache connects to Redis and verifies the connection
func NewRedisMappingCache(cfg RedisConfig) (*RedisMappingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisMappingCacheWithClient(client, ""), nil
}

// NewRedisMappingCacheWithClient creates a cache on an existing client
func NewRedisMappingCacheWithClient(client *redis.Client, keyPrefix string) *RedisMappingCache {
	if keyPrefix == "" {
		keyPrefix = defaultMappingKeyPrefix
	}
	return &RedisMappingCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisMappingCache) key(platform, label string) string {
	return c.keyPrefix + mappingKey(platform, label)
}

// Get returns the cached mapping, or nil on a miss
func (c *RedisMappingCache) Get(ctx context.Context, platform, label string) (*catalog.CategoryMapping, error) {
	data, err := c.client.Get(ctx, c.key(platform, label)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read category mapping: %w", err)
	}
	var mapping catalog.CategoryMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to decode category mapping: %w", err)
	}
	return &mapping, nil
}

// Set stores the mapping with a TTL
func (c *RedisMappingCache) Set(ctx context.Context, mapping *catalog.CategoryMapping, ttl time.Duration) error {
	if mapping == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultMappingTTL
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to encode category mapping: %w", err)
	}
	if err := c.client.Set(ctx, c.key(mapping.Platform, mapping.ExternalLabel), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write category mapping: %w", err)
	}
	return nil
}

// Delete evicts a platform label
func (c *RedisMappingCache) Delete(ctx context.Context, platform, label string) error {
	if err := c.client.Del(ctx, c.key(platform, label)).Err(); err != nil {
		return fmt.Errorf("failed to evict category mapping: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable
func (c *RedisMappingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisMappingCache) Close() error {
	return c.client.Close()
}

var _ MappingCache = (*RedisMappingCache)(nil)
