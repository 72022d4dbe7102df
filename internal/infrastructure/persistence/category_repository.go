package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindBySlug finds a category by its slug
func (r *GormCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	return r.first(r.db.WithContext(ctx).Where("slug = ?", slug))
}

// FindDefault finds the catch-all category. When several are flagged the
// oldest wins.
func (r *GormCategoryRepository) FindDefault(ctx context.Context) (*catalog.Category, error) {
	return r.first(r.db.WithContext(ctx).Where("is_default = ?", true).Order("created_at ASC"))
}

// FindAll returns every category ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]*catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make([]*catalog.Category, len(rows))
	for i := range rows {
		categories[i] = rows[i].ToDomain()
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(models.CategoryModelFromDomain(category)).Error
}

func (r *GormCategoryRepository) first(query *gorm.DB) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormCategoryMappingRepository implements CategoryMappingRepository using GORM
type GormCategoryMappingRepository struct {
	db *gorm.DB
}

// NewGormCategoryMappingRepository creates a new GormCategoryMappingRepository
func NewGormCategoryMappingRepository(db *gorm.DB) *GormCategoryMappingRepository {
	return &GormCategoryMappingRepository{db: db}
}

// FindActive finds the active mapping of a platform label
func (r *GormCategoryMappingRepository) FindActive(ctx context.Context, platform, label string) (*catalog.CategoryMapping, error) {
	var model models.CategoryMappingModel
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND external_label = ? AND is_active = ?", platform, catalog.NormalizeLabel(label), true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a mapping. An existing active mapping for the pair is
// kept untouched; an inactive one is replaced and reactivated.
func (r *GormCategoryMappingRepository) Create(ctx context.Context, mapping *catalog.CategoryMapping) (bool, error) {
	model := models.CategoryMappingModelFromDomain(mapping)
	model.ExternalLabel = catalog.NormalizeLabel(model.ExternalLabel)

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform"}, {Name: "external_label"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_id", "confidence", "is_active"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "category_mappings", Name: "is_active"}, Value: false},
		}},
	}).Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Deactivate retires the active mapping of a platform label so the next
// import resolves it again
func (r *GormCategoryMappingRepository) Deactivate(ctx context.Context, platform, label string) error {
	result := r.db.WithContext(ctx).
		Model(&models.CategoryMappingModel{}).
		Where("platform = ? AND external_label = ? AND is_active = ?", platform, catalog.NormalizeLabel(label), true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure repositories implement the catalog interfaces
var (
	_ catalog.CategoryRepository        = (*GormCategoryRepository)(nil)
	_ catalog.CategoryMappingRepository = (*GormCategoryMappingRepository)(nil)
)
