package taxonomy

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// StrategyMapping names resolutions served from learned mappings
const StrategyMapping = "mapping"

// MappingResolver returns the category of the first label that already
// has an active mapping for the platform.
type MappingResolver struct {
	categories catalog.CategoryRepository
	mappings   catalog.CategoryMappingRepository
}

// NewMappingResolver creates a MappingResolver
func NewMappingResolver(categories catalog.CategoryRepository, mappings catalog.CategoryMappingRepository) *MappingResolver {
	return &MappingResolver{categories: categories, mappings: mappings}
}

func (r *MappingResolver) Name() string { return StrategyMapping }

func (r *MappingResolver) Resolve(ctx context.Context, req Request) (*catalog.Category, error) {
	for _, label := range req.Labels {
		label = catalog.NormalizeLabel(label)
		if label == "" {
			continue
		}
		mapping, err := r.mappings.FindActive(ctx, req.Platform, label)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		category, err := r.categories.FindByID(ctx, mapping.CategoryID)
		if errors.Is(err, shared.ErrNotFound) {
			// mapping points at a category that has since been removed
			continue
		}
		if err != nil {
			return nil, err
		}
		return category, nil
	}
	return nil, nil
}
