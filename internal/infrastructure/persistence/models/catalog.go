package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"gorm.io/datatypes"
)

// ProductModel is the persistence model for catalog.AdmittedProduct.
// The primary key is the composite "<platform>_<external id>".
type ProductModel struct {
	ID                 string                  `gorm:"type:varchar(160);primaryKey"`
	Name               string                  `gorm:"type:varchar(500);not null"`
	Description        string                  `gorm:"type:text"`
	Price              decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	OriginalPrice      *decimal.Decimal        `gorm:"type:decimal(18,2)"`
	DiscountPercentage int                     `gorm:"not null"`
	CategoryID         string                  `gorm:"type:varchar(36);index"`
	CategoryName       string                  `gorm:"type:varchar(200)"`
	Brand              string                  `gorm:"type:varchar(200)"`
	PrimaryImage       string                  `gorm:"type:text"`
	StockQuantity      int                     `gorm:"not null"`
	InStock            bool                    `gorm:"not null"`
	SourcePlatform     string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_platform_external,priority:1"`
	ExternalID         string                  `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_platform_external,priority:2"`
	CommercialType     catalog.CommercialType  `gorm:"type:varchar(20);not null"`
	AffiliateURL       string                  `gorm:"type:text"`
	Currency           string                  `gorm:"type:varchar(3);not null"`
	Metadata           datatypes.JSONMap       `gorm:"type:jsonb"`
	AutoSync           bool                    `gorm:"not null"`
	LastSyncedAt       time.Time               `gorm:"not null;index"`
	SyncStatus         catalog.SyncStatus      `gorm:"type:varchar(20);not null"`
	AdmissionStatus    catalog.AdmissionStatus `gorm:"type:varchar(20);not null;index"`
	QualityScore       int                     `gorm:"not null"`
	CreatedAt          time.Time               `gorm:"not null"`
	UpdatedAt          time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain AdmittedProduct
func (m *ProductModel) ToDomain() *catalog.AdmittedProduct {
	return &catalog.AdmittedProduct{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		Price:              m.Price,
		OriginalPrice:      m.OriginalPrice,
		DiscountPercentage: m.DiscountPercentage,
		CategoryID:         m.CategoryID,
		CategoryName:       m.CategoryName,
		Brand:              m.Brand,
		PrimaryImage:       m.PrimaryImage,
		StockQuantity:      m.StockQuantity,
		InStock:            m.InStock,
		SourcePlatform:     m.SourcePlatform,
		ExternalID:         m.ExternalID,
		CommercialType:     m.CommercialType,
		AffiliateURL:       m.AffiliateURL,
		Currency:           m.Currency,
		Metadata:           map[string]any(m.Metadata),
		AutoSync:           m.AutoSync,
		LastSyncedAt:       m.LastSyncedAt,
		SyncStatus:         m.SyncStatus,
		AdmissionStatus:    m.AdmissionStatus,
		QualityScore:       m.QualityScore,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain AdmittedProduct
func ProductModelFromDomain(p *catalog.AdmittedProduct) *ProductModel {
	return &ProductModel{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		OriginalPrice:      p.OriginalPrice,
		DiscountPercentage: p.DiscountPercentage,
		CategoryID:         p.CategoryID,
		CategoryName:       p.CategoryName,
		Brand:              p.Brand,
		PrimaryImage:       p.PrimaryImage,
		StockQuantity:      p.StockQuantity,
		InStock:            p.InStock,
		SourcePlatform:     p.SourcePlatform,
		ExternalID:         p.ExternalID,
		CommercialType:     p.CommercialType,
		AffiliateURL:       p.AffiliateURL,
		Currency:           p.Currency,
		Metadata:           datatypes.JSONMap(p.Metadata),
		AutoSync:           p.AutoSync,
		LastSyncedAt:       p.LastSyncedAt,
		SyncStatus:         p.SyncStatus,
		AdmissionStatus:    p.AdmissionStatus,
		QualityScore:       p.QualityScore,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// CategoryModel is the persistence model for catalog.Category
type CategoryModel struct {
	BaseModel
	Slug      string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name      string `gorm:"type:varchar(200);not null"`
	IsDefault bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		ID:        m.ID,
		Slug:      m.Slug,
		Name:      m.Name,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
	}
}

// CategoryModelFromDomain creates a persistence model from a domain Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	return &CategoryModel{
		BaseModel: BaseModel{ID: c.ID, CreatedAt: c.CreatedAt},
		Slug:      c.Slug,
		Name:      c.Name,
		IsDefault: c.IsDefault,
	}
}

// CategoryMappingModel is the persistence model for catalog.CategoryMapping.
// (platform, external_label) is unique, which keeps at most one active
// mapping per pair.
type CategoryMappingModel struct {
	BaseModel
	Platform      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_category_mappings_platform_label,priority:1"`
	ExternalLabel string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_category_mappings_platform_label,priority:2"`
	CategoryID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Confidence    float64   `gorm:"not null"`
	IsActive      bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryMappingModel) TableName() string {
	return "category_mappings"
}

// ToDomain converts the persistence model to a domain CategoryMapping
func (m *CategoryMappingModel) ToDomain() *catalog.CategoryMapping {
	return &catalog.CategoryMapping{
		ID:            m.ID,
		Platform:      m.Platform,
		ExternalLabel: m.ExternalLabel,
		CategoryID:    m.CategoryID,
		Confidence:    m.Confidence,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
	}
}

// CategoryMappingModelFromDomain creates a persistence model from a domain CategoryMapping
func CategoryMappingModelFromDomain(c *catalog.CategoryMapping) *CategoryMappingModel {
	return &CategoryMappingModel{
		BaseModel:     BaseModel{ID: c.ID, CreatedAt: c.CreatedAt},
		Platform:      c.Platform,
		ExternalLabel: c.ExternalLabel,
		CategoryID:    c.CategoryID,
		Confidence:    c.Confidence,
		IsActive:      c.IsActive,
	}
}
