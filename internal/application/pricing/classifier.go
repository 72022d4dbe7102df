// Package pricing decides the commercial role of an imported candidate
// and computes the price it is listed at.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
)

var hundred = decimal.NewFromInt(100)

// Classification is the commercial type and listing price of a candidate
type Classification struct {
	Type               catalog.CommercialType
	Price              decimal.Decimal
	OriginalPrice      *decimal.Decimal // set only when a sale price exists
	DiscountPercentage int
	AffiliateURL       string
	AppliedRules       []string
}

// Classify resolves the commercial type, then prices the candidate.
// The base price is the sale price when present, else the regular price;
// dropship products get the run's markup on top.
func Classify(c *integration.Candidate, cfg integration.RunConfig) Classification {
	result := Classification{Type: CommercialType(c, cfg.ProductType)}
	if result.Type == catalog.CommercialTypeAffiliate {
		result.AffiliateURL = strings.TrimSpace(c.ExternalURL)
	}

	regular, hasRegular := c.RegularPriceValue()
	sale, hasSale := c.SalePriceValue()

	base := regular
	if hasSale {
		base = sale
		result.AppliedRules = append(result.AppliedRules, "sale_price")
	} else if !hasRegular {
		base = decimal.Zero
	}

	if result.Type == catalog.CommercialTypeDropship && cfg.PriceMarkup != nil && cfg.PriceMarkup.IsPositive() {
		base = base.Mul(decimal.NewFromInt(1).Add(cfg.PriceMarkup.Div(hundred)))
		result.AppliedRules = append(result.AppliedRules, "dropship_markup")
	}
	result.Price = base.Round(2)

	if hasSale {
		original := decimal.Zero
		if hasRegular {
			original = regular.Round(2)
		}
		result.OriginalPrice = &original
		result.DiscountPercentage = DiscountPercentage(regular, sale)
	}
	return result
}

// CommercialType applies the type rules in order: an external link or an
// affiliate tag, then a supplier tag, then a vendor id. fallback is used
// when nothing matches and defaults to native.
func CommercialType(c *integration.Candidate, fallback catalog.CommercialType) catalog.CommercialType {
	switch {
	case strings.TrimSpace(c.ExternalURL) != "" || c.HasTag("affiliate"):
		return catalog.CommercialTypeAffiliate
	case c.HasTag("dropship", "dropshipping") || c.HasTagPrefix("supplier:"):
		return catalog.CommercialTypeDropship
	}
	if _, ok := c.MetadataString("vendor_id"); ok {
		return catalog.CommercialTypeMultivendor
	}
	if fallback.IsValid() {
		return fallback
	}
	return catalog.CommercialTypeNative
}

// DiscountPercentage is round((regular-sale)/regular*100), kept within
// [0,100]. A non-positive regular price yields 0.
func DiscountPercentage(regular, sale decimal.Decimal) int {
	if !regular.IsPositive() {
		return 0
	}
	pct := regular.Sub(sale).Div(regular).Mul(hundred).Round(0).IntPart()
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}
