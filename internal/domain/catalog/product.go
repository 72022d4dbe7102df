package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// CommercialType is the fulfillment/ownership model of a product
type CommercialType string

const (
	CommercialTypeAffiliate   CommercialType = "affiliate"
	CommercialTypeDropship    CommercialType = "dropship"
	CommercialTypeMultivendor CommercialType = "multivendor"
	CommercialTypeNative      CommercialType = "native"
)

// IsValid checks if the commercial type is known
func (t CommercialType) IsValid() bool {
	switch t {
	case CommercialTypeAffiliate, CommercialTypeDropship, CommercialTypeMultivendor, CommercialTypeNative:
		return true
	}
	return false
}

// AdmissionStatus is the workflow status of a stored product. Only
// rejected and preview are written by ingestion; later states belong to
// the merchandising workflow.
type AdmissionStatus string

const (
	AdmissionStatusRejected  AdmissionStatus = "rejected"
	AdmissionStatusPreview   AdmissionStatus = "preview"
	AdmissionStatusPublished AdmissionStatus = "published"
	AdmissionStatusArchived  AdmissionStatus = "archived"
)

// IsAdmitted reports whether the status places the product in the catalog
func (s AdmissionStatus) IsAdmitted() bool {
	return s != "" && s != AdmissionStatusRejected
}

// SyncStatus records the outcome of the last import of a product
type SyncStatus string

const (
	SyncStatusSynced SyncStatus = "synced"
	SyncStatusFailed SyncStatus = "failed"
)

// ProductID composes the catalog id "platform:external_id" of an imported
// product. Platform slugs never contain ':', so distinct (platform,
// external id) pairs always yield distinct ids.
func ProductID(platform, externalID string) string {
	return platform + ":" + externalID
}

// AdmittedProduct is the canonical stored product created or updated by
// ingestion. ID is always ProductID(SourcePlatform, ExternalID).
type AdmittedProduct struct {
	ID                 string
	Name               string
	Description        string
	Price              decimal.Decimal
	OriginalPrice      *decimal.Decimal
	DiscountPercentage int
	CategoryID         string
	CategoryName       string
	Brand              string
	PrimaryImage       string
	StockQuantity      int
	InStock            bool
	SourcePlatform     string
	ExternalID         string
	CommercialType     CommercialType
	AffiliateURL       string
	Currency           string
	Metadata           map[string]any
	AutoSync           bool
	LastSyncedAt       time.Time
	SyncStatus         SyncStatus
	AdmissionStatus    AdmissionStatus
	QualityScore       int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the identity invariants before persisting
func (p *AdmittedProduct) Validate() error {
	if p.SourcePlatform == "" || p.ExternalID == "" {
		return shared.NewDomainError("INVALID_PRODUCT_IDENTITY", "source platform and external id are required")
	}
	if p.ID != ProductID(p.SourcePlatform, p.ExternalID) {
		return shared.NewDomainError("INVALID_PRODUCT_IDENTITY",
			fmt.Sprintf("product id %q does not match %s/%s", p.ID, p.SourcePlatform, p.ExternalID))
	}
	if !p.CommercialType.IsValid() {
		return shared.NewDomainError("INVALID_COMMERCIAL_TYPE", fmt.Sprintf("invalid commercial type: %s", p.CommercialType))
	}
	if p.AdmissionStatus == "" {
		return shared.NewDomainError("INVALID_ADMISSION_STATUS", "admission status is required")
	}
	return nil
}
