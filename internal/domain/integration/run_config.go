package integration

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryMappingMode controls how unmapped labels are handled
type CategoryMappingMode string

const (
	// CategoryMappingAuto resolves through cache, keyword match and the
	// catch-all, learning new mappings on the way.
	CategoryMappingAuto CategoryMappingMode = "auto"
	// CategoryMappingManual only accepts labels an operator already mapped
	CategoryMappingManual CategoryMappingMode = "manual"
)

// RunConfig is the configuration of one ingestion run. It is persisted
// verbatim on the session.
type RunConfig struct {
	SourcePlatform      SourcePlatform         `json:"source_platform" validate:"required"`
	ProductType         catalog.CommercialType `json:"product_type" validate:"omitempty,oneof=affiliate dropship multivendor native"`
	BatchSize           int                    `json:"batch_size" validate:"gte=0,lte=1000"`
	CategoryMappingMode CategoryMappingMode    `json:"category_mapping_mode" validate:"omitempty,oneof=auto manual"`
	PriceMarkup         *decimal.Decimal       `json:"price_markup,omitempty"`
	DefaultCurrency     string                 `json:"default_currency" validate:"omitempty,len=3"`
	SyncInventory       bool                   `json:"sync_inventory"`
	EnableAutoSync      bool                   `json:"enable_auto_sync"`
}

var runConfigValidator = validator.New()

// WithDefaults fills unset optional fields
func (c RunConfig) WithDefaults(batchSize int, currency string) RunConfig {
	if c.ProductType == "" {
		c.ProductType = catalog.CommercialTypeNative
	}
	if c.BatchSize == 0 {
		c.BatchSize = batchSize
	}
	if c.CategoryMappingMode == "" {
		c.CategoryMappingMode = CategoryMappingAuto
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = currency
	}
	return c
}

// Validate checks struct constraints and the platform slug
func (c RunConfig) Validate() error {
	if err := runConfigValidator.Struct(c); err != nil {
		return shared.NewDomainError("INVALID_RUN_CONFIG", err.Error())
	}
	if !c.SourcePlatform.IsValid() {
		return shared.NewDomainError("INVALID_RUN_CONFIG", fmt.Sprintf("invalid source platform: %q", c.SourcePlatform))
	}
	if c.PriceMarkup != nil && c.PriceMarkup.IsNegative() {
		return shared.NewDomainError("INVALID_RUN_CONFIG", "price markup cannot be negative")
	}
	return nil
}
