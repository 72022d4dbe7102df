package taxonomy

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// StrategyDefault names resolutions that fell through to the catch-all
const StrategyDefault = "default"

// DefaultResolver returns the catch-all category. It prefers the category
// flagged as default and falls back to the configured slug.
type DefaultResolver struct {
	categories catalog.CategoryRepository
	slug       string
}

// NewDefaultResolver creates a DefaultResolver
func NewDefaultResolver(categories catalog.CategoryRepository, slug string) *DefaultResolver {
	return &DefaultResolver{categories: categories, slug: slug}
}

func (r *DefaultResolver) Name() string { return StrategyDefault }

func (r *DefaultResolver) Resolve(ctx context.Context, _ Request) (*catalog.Category, error) {
	category, err := r.categories.FindDefault(ctx)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if r.slug == "" {
		return nil, nil
	}
	category, err = r.categories.FindBySlug(ctx, r.slug)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}
