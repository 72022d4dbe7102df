package cache

import (
	"fmt"

	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Mapping cache backends
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// MappingCacheFactory creates mapping caches based on configuration
type MappingCacheFactory struct {
	taxonomyConfig        config.TaxonomyConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// MappingCacheFactoryOption is a functional option for configuring the factory
type MappingCacheFactoryOption func(*MappingCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) MappingCacheFactoryOption {
	return func(f *MappingCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// cache when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) MappingCacheFactoryOption {
	return func(f *MappingCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewMappingCacheFactory creates a new factory
func NewMappingCacheFactory(taxonomy config.TaxonomyConfig, redisCfg config.RedisConfig, opts ...MappingCacheFactoryOption) *MappingCacheFactory {
	f := &MappingCacheFactory{
		taxonomyConfig:        taxonomy,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds the configured cache. It returns nil for the "none"
// backend, and a cleanup function that releases the cache's resources.
func (f *MappingCacheFactory) Create() (MappingCache, func(), error) {
	switch f.taxonomyConfig.MappingCacheBackend {
	case BackendNone:
		f.logger.Info("Category mapping cache disabled")
		return nil, func() {}, nil
	case BackendRedis:
		return f.createTiered()
	case BackendMemory, "":
		l1 := f.newInMemory()
		f.logger.Info("Using in-memory category mapping cache")
		return l1, l1.Stop, nil
	default:
		return nil, nil, fmt.Errorf("unknown mapping cache backend %q", f.taxonomyConfig.MappingCacheBackend)
	}
}

func (f *MappingCacheFactory) newInMemory() *InMemoryMappingCache {
	return NewInMemoryMappingCache(
		WithDefaultTTL(f.taxonomyConfig.MappingCacheTTL),
		WithInMemoryLogger(f.logger),
	)
}

func (f *MappingCacheFactory) createTiered() (MappingCache, func(), error) {
	l2, err := NewRedisMappingCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	l1 := f.newInMemory()
	if err != nil {
		if !f.allowInMemoryFallback {
			l1.Stop()
			return nil, nil, fmt.Errorf("Redis required for mapping cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory category mapping cache. "+
			"Mappings learned by other instances are not seen until they reach the database.",
			zap.Error(err),
		)
		return l1, l1.Stop, nil
	}

	f.logger.Info("Using tiered category mapping cache", zap.String("redis", f.redisConfig.Addr()))
	cleanup := func() {
		l1.Stop()
		if err := l2.Close(); err != nil {
			f.logger.Warn("Failed to close Redis mapping cache", zap.Error(err))
		}
	}
	return NewTieredMappingCache(l1, l2, f.logger), cleanup, nil
}
