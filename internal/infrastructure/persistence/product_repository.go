package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productUpdateColumns are rewritten when an existing product is
// re-imported. created_at and the stock columns are not in this list.
var productUpdateColumns = []string{
	"name",
	"description",
	"price",
	"original_price",
	"discount_percentage",
	"category_id",
	"category_name",
	"brand",
	"primary_image",
	"commercial_type",
	"affiliate_url",
	"currency",
	"metadata",
	"auto_sync",
	"last_synced_at",
	"sync_status",
	"quality_score",
	"updated_at",
}

var productStockColumns = []string{"stock_quantity", "in_stock"}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its composite id
func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*catalog.AdmittedProduct, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts the product or updates the existing row with the same id.
// A re-import scored as preview leaves a published or archived product in
// its workflow state.
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.AdmittedProduct, syncInventory bool) error {
	if err := product.Validate(); err != nil {
		return err
	}

	model := models.ProductModelFromDomain(product)
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	columns := make([]string, 0, len(productUpdateColumns)+len(productStockColumns))
	columns = append(columns, productUpdateColumns...)
	if syncInventory {
		columns = append(columns, productStockColumns...)
	}
	assignments := clause.AssignmentColumns(columns)
	assignments = append(assignments, clause.Assignment{
		Column: clause.Column{Name: "admission_status"},
		Value: gorm.Expr(
			"CASE WHEN products.admission_status IN (?, ?) AND excluded.admission_status = ? THEN products.admission_status ELSE excluded.admission_status END",
			catalog.AdmissionStatusPublished, catalog.AdmissionStatusArchived, catalog.AdmissionStatusPreview,
		),
	})

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: assignments,
	}).Create(model).Error
}

// Count returns the number of products, optionally filtered by status
func (r *GormProductRepository) Count(ctx context.Context, status catalog.AdmissionStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if status != "" {
		query = query.Where("admission_status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindRecentNames returns id → name of the newest admitted products of a platform
func (r *GormProductRepository) FindRecentNames(ctx context.Context, platform string, limit int) (map[string]string, error) {
	var rows []struct {
		ID   string
		Name string
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select("id", "name").
		Where("source_platform = ? AND admission_status <> ?", platform, catalog.AdmissionStatusRejected).
		Order("last_synced_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
