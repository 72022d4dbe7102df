package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultConfidence is the confidence recorded for keyword-derived mappings
const DefaultConfidence = 0.8

// Category is a node of the internal unified taxonomy
type Category struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	IsDefault bool // the catch-all used when nothing else matches
	CreatedAt time.Time
}

// NewCategory creates a category with a lower-cased slug
func NewCategory(slug, name string) (*Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_SLUG", "category slug cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "category name cannot be empty")
	}
	return &Category{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

// CategoryMapping caches a resolved (platform, external label) pair.
// At most one active mapping exists per pair.
type CategoryMapping struct {
	ID            uuid.UUID
	Platform      string
	ExternalLabel string
	CategoryID    uuid.UUID
	Confidence    float64
	IsActive      bool
	CreatedAt     time.Time
}

// NormalizeLabel is the key form of an external category label
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// NewCategoryMapping creates an active mapping
func NewCategoryMapping(platform, label string, categoryID uuid.UUID, confidence float64) (*CategoryMapping, error) {
	label = NormalizeLabel(label)
	if platform == "" || label == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_MAPPING", "platform and label are required")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY_MAPPING", "category id is required")
	}
	if confidence < 0 || confidence > 1 {
		return nil, shared.NewDomainError("INVALID_CATEGORY_MAPPING", "confidence must be within [0,1]")
	}
	return &CategoryMapping{
		ID:            uuid.New(),
		Platform:      platform,
		ExternalLabel: label,
		CategoryID:    categoryID,
		Confidence:    confidence,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}, nil
}
