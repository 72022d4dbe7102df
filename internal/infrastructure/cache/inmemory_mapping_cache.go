package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultMappingTTL      = 10 * time.Minute
)

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     *T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryMappingCache implements MappingCache in process memory. It is
// used alone for single-instance deployments and as L1 in front of Redis.
type InMemoryMappingCache struct {
	entries    sync.Map // key -> *cacheEntry[catalog.CategoryMapping]
	defaultTTL time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
	stopped    int32

	hits   int64
	misses int64
}

// InMemoryMappingCacheOption is a functional option for configuring the cache
type InMemoryMappingCacheOption func(*InMemoryMappingCache)

// WithDefaultTTL sets the TTL used when Set is called without one
func WithDefaultTTL(ttl time.Duration) InMemoryMappingCacheOption {
	return func(c *InMemoryMappingCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryMappingCacheOption {
	return func(c *InMemoryMappingCache) {
		c.logger = logger
	}
}

// NewInMemoryMappingCache creates the cache and starts its cleanup loop.
// Call Stop to end the loop.
func NewInMemoryMappingCache(opts ...InMemoryMappingCacheOption) *InMemoryMappingCache {
	c := &InMemoryMappingCache{
		defaultTTL: defaultMappingTTL,
		logger:     zap.NewNop(),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.cleanupExpired()
	return c
}

// Get returns the cached mapping, or nil when absent or expired
func (c *InMemoryMappingCache) Get(_ context.Context, platform, label string) (*catalog.CategoryMapping, error) {
	key := mappingKey(platform, label)
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry[catalog.CategoryMapping])
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			copied := *entry.value
			return &copied, nil
		}
		c.entries.Delete(key)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores a copy of the mapping
func (c *InMemoryMappingCache) Set(_ context.Context, mapping *catalog.CategoryMapping, ttl time.Duration) error {
	if mapping == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	copied := *mapping
	c.entries.Store(mappingKey(mapping.Platform, mapping.ExternalLabel), &cacheEntry[catalog.CategoryMapping]{
		value:     &copied,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete evicts a platform label
func (c *InMemoryMappingCache) Delete(_ context.Context, platform, label string) error {
	c.entries.Delete(mappingKey(platform, label))
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryMappingCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop ends the cleanup loop. Calling it twice is safe.
func (c *InMemoryMappingCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

func (c *InMemoryMappingCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			removed := 0
			c.entries.Range(func(key, value any) bool {
				if value.(*cacheEntry[catalog.CategoryMapping]).isExpired() {
					c.entries.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				c.logger.Debug("Expired category mappings evicted", zap.Int("count", removed))
			}
		}
	}
}

var _ MappingCache = (*InMemoryMappingCache)(nil)
