// Package cache provides read-through caches for category mappings: an
// in-memory L1, a Redis L2 shared across instances, and a tiered
// combination of both.
package cache

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MappingCache stores active category mappings by (platform, label).
// Get returns nil, nil on a miss.
type MappingCache interface {
	Get(ctx context.Context, platform, label string) (*catalog.CategoryMapping, error)
	Set(ctx context.Context, mapping *catalog.CategoryMapping, ttl time.Duration) error
	Delete(ctx context.Context, platform, label string) error
}

// mappingKey is the cache key of a platform label
func mappingKey(platform, label string) string {
	return "category_mapping:" + platform + ":" + catalog.NormalizeLabel(label)
}

// mappingDeactivator is implemented by repositories that can retire a mapping
type mappingDeactivator interface {
	Deactivate(ctx context.Context, platform, label string) error
}

// CachedMappingRepository decorates a CategoryMappingRepository with a
// read-through cache. Only hits are cached: a label that resolves to
// nothing is looked up again next time so a freshly learned mapping is
// seen immediately. Cache failures are logged and fall through to the
// repository.
type CachedMappingRepository struct {
	repo   catalog.CategoryMappingRepository
	cache  MappingCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedMappingRepository creates a CachedMappingRepository
func NewCachedMappingRepository(repo catalog.CategoryMappingRepository, cache MappingCache, ttl time.Duration, logger *zap.Logger) *CachedMappingRepository {
	return &CachedMappingRepository{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// FindActive returns the cached mapping or loads and caches it
func (r *CachedMappingRepository) FindActive(ctx context.Context, platform, label string) (*catalog.CategoryMapping, error) {
	cached, err := r.cache.Get(ctx, platform, label)
	if err != nil {
		r.logger.Warn("Category mapping cache read failed", zap.String("platform", platform), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	mapping, err := r.repo.FindActive(ctx, platform, label)
	if err != nil {
		return nil, err
	}
	r.store(ctx, mapping)
	return mapping, nil
}

// Create writes through and caches the mapping when it was inserted
func (r *CachedMappingRepository) Create(ctx context.Context, mapping *catalog.CategoryMapping) (bool, error) {
	created, err := r.repo.Create(ctx, mapping)
	if err != nil || !created {
		return created, err
	}
	r.store(ctx, mapping)
	return true, nil
}

// Deactivate retires the mapping and evicts it. The entry is evicted
// even when the repository reports nothing to retire.
func (r *CachedMappingRepository) Deactivate(ctx context.Context, platform, label string) error {
	d, ok := r.repo.(mappingDeactivator)
	if !ok {
		return shared.NewDomainError("UNSUPPORTED", "mapping repository cannot deactivate mappings")
	}
	err := d.Deactivate(ctx, platform, label)
	r.evict(ctx, platform, label)
	return err
}

func (r *CachedMappingRepository) store(ctx context.Context, mapping *catalog.CategoryMapping) {
	if err := r.cache.Set(ctx, mapping, r.ttl); err != nil {
		r.logger.Warn("Category mapping cache write failed", zap.String("platform", mapping.Platform), zap.Error(err))
	}
}

func (r *CachedMappingRepository) evict(ctx context.Context, platform, label string) {
	if err := r.cache.Delete(ctx, platform, label); err != nil {
		r.logger.Warn("Category mapping cache eviction failed", zap.String("platform", platform), zap.Error(err))
	}
}

// Ensure CachedMappingRepository implements CategoryMappingRepository
var _ catalog.CategoryMappingRepository = (*CachedMappingRepository)(nil)
