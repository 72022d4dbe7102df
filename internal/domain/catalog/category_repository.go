package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository reads the internal taxonomy
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	// FindDefault returns the catch-all category, or shared.ErrNotFound
	FindDefault(ctx context.Context) (*Category, error)
	FindAll(ctx context.Context) ([]*Category, error)
	Save(ctx context.Context, category *Category) error
}

// CategoryMappingRepository stores learned label mappings
type CategoryMappingRepository interface {
	// FindActive returns the active mapping for (platform, label), or
	// shared.ErrNotFound.
	FindActive(ctx context.Context, platform, label string) (*CategoryMapping, error)

	// Create inserts the mapping unless an active one already exists for
	// the pair. It reports whether a row was written.
	Create(ctx context.Context, mapping *CategoryMapping) (bool, error)
}
