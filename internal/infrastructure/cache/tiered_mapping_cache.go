package cache

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// l1TTLCap bounds how long L1 may serve a mapping another instance retired
const l1TTLCap = time.Minute

// TieredMappingCache reads L1 then L2 and fills L1 from L2 hits. Writes
// and deletes go to both tiers.
type TieredMappingCache struct {
	l1     MappingCache
	l2     MappingCache
	logger *zap.Logger
}

// NewTieredMappingCache creates a TieredMappingCache
func NewTieredMappingCache(l1, l2 MappingCache, logger *zap.Logger) *TieredMappingCache {
	return &TieredMappingCache{l1: l1, l2: l2, logger: logger}
}

// Get reads through both tiers
func (c *TieredMappingCache) Get(ctx context.Context, platform, label string) (*catalog.CategoryMapping, error) {
	if m, err := c.l1.Get(ctx, platform, label); err == nil && m != nil {
		return m, nil
	}
	m, err := c.l2.Get(ctx, platform, label)
	if err != nil || m == nil {
		return nil, err
	}
	if err := c.l1.Set(ctx, m, l1TTLCap); err != nil {
		c.logger.Debug("L1 fill failed", zap.Error(err))
	}
	return m, nil
}

// Set writes L2 first, then L1 with a capped TTL
func (c *TieredMappingCache) Set(ctx context.Context, mapping *catalog.CategoryMapping, ttl time.Duration) error {
	if err := c.l2.Set(ctx, mapping, ttl); err != nil {
		return err
	}
	l1TTL := ttl
	if l1TTL <= 0 || l1TTL > l1TTLCap {
		l1TTL = l1TTLCap
	}
	return c.l1.Set(ctx, mapping, l1TTL)
}

// Delete evicts from both tiers
func (c *TieredMappingCache) Delete(ctx context.Context, platform, label string) error {
	l1Err := c.l1.Delete(ctx, platform, label)
	if err := c.l2.Delete(ctx, platform, label); err != nil {
		return err
	}
	return l1Err
}

var _ MappingCache = (*TieredMappingCache)(nil)

// Ping checks the shared tier
func (c *TieredMappingCache) Ping(ctx context.Context) error {
	if p, ok := c.l2.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
