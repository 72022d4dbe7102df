package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markup(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCommercialType(t *testing.T) {
	tests := []struct {
		name     string
		cand     integration.Candidate
		fallback catalog.CommercialType
		want     catalog.CommercialType
	}{
		{"external url", integration.Candidate{ExternalURL: "https://partner.example.com/p/1"}, catalog.CommercialTypeNative, catalog.CommercialTypeAffiliate},
		{"affiliate tag", integration.Candidate{Tags: []string{" Affiliate "}}, catalog.CommercialTypeNative, catalog.CommercialTypeAffiliate},
		{"affiliate wins over dropship", integration.Candidate{ExternalURL: "https://x.example.com", Tags: []string{"dropship"}}, "", catalog.CommercialTypeAffiliate},
		{"dropship tag", integration.Candidate{Tags: []string{"sale", "Dropshipping"}}, catalog.CommercialTypeNative, catalog.CommercialTypeDropship},
		{"supplier tag", integration.Candidate{Tags: []string{"supplier:cj"}}, catalog.CommercialTypeNative, catalog.CommercialTypeDropship},
		{"vendor metadata", integration.Candidate{Metadata: map[string]any{"vendor_id": 42}}, catalog.CommercialTypeNative, catalog.CommercialTypeMultivendor},
		{"blank vendor metadata ignored", integration.Candidate{Metadata: map[string]any{"vendor_id": " "}}, catalog.CommercialTypeDropship, catalog.CommercialTypeDropship},
		{"run default", integration.Candidate{}, catalog.CommercialTypeMultivendor, catalog.CommercialTypeMultivendor},
		{"native when unset", integration.Candidate{}, "", catalog.CommercialTypeNative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommercialType(&tt.cand, tt.fallback))
		})
	}
}

func TestClassify_DropshipMarkupWithSale(t *testing.T) {
	c := integration.Candidate{RegularPrice: "100", SalePrice: "80", Tags: []string{"dropship"}}
	cfg := integration.RunConfig{ProductType: catalog.CommercialTypeNative, PriceMarkup: markup("20")}

	got := Classify(&c, cfg)

	assert.Equal(t, catalog.CommercialTypeDropship, got.Type)
	assert.Equal(t, "96.00", got.Price.StringFixed(2))
	assert.Equal(t, 20, got.DiscountPercentage)
	require.NotNil(t, got.OriginalPrice)
	assert.True(t, got.OriginalPrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{"sale_price", "dropship_markup"}, got.AppliedRules)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		cand         integration.Candidate
		cfg          integration.RunConfig
		wantPrice    string
		wantDiscount int
		wantOriginal string
	}{
		{
			name:      "regular price only",
			cand:      integration.Candidate{Price: "19.99"},
			wantPrice: "19.99",
		},
		{
			name:         "sale without markup",
			cand:         integration.Candidate{RegularPrice: "50", SalePrice: "37.5"},
			wantPrice:    "37.50",
			wantDiscount: 25,
			wantOriginal: "50.00",
		},
		{
			name:      "markup ignored for non dropship",
			cand:      integration.Candidate{Price: "10"},
			cfg:       integration.RunConfig{PriceMarkup: markup("50")},
			wantPrice: "10.00",
		},
		{
			name:      "dropship markup rounds to cents",
			cand:      integration.Candidate{Price: "9.99", Tags: []string{"supplier:acme"}},
			cfg:       integration.RunConfig{PriceMarkup: markup("15")},
			wantPrice: "11.49",
		},
		{
			name:      "dropship run default without markup",
			cand:      integration.Candidate{Price: "12"},
			cfg:       integration.RunConfig{ProductType: catalog.CommercialTypeDropship},
			wantPrice: "12.00",
		},
		{
			name:         "discount rounds half up",
			cand:         integration.Candidate{RegularPrice: "30", SalePrice: "19.95"},
			wantPrice:    "19.95",
			wantDiscount: 34,
			wantOriginal: "30.00",
		},
		{
			name:      "zero sale price is not a sale",
			cand:      integration.Candidate{RegularPrice: "30", SalePrice: "0"},
			wantPrice: "30.00",
		},
		{
			name:         "sale above regular gives no discount",
			cand:         integration.Candidate{RegularPrice: "20", SalePrice: "25"},
			wantPrice:    "25.00",
			wantOriginal: "20.00",
		},
		{
			name:      "unparseable price",
			cand:      integration.Candidate{Price: "n/a"},
			wantPrice: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(&tt.cand, tt.cfg)

			assert.Equal(t, tt.wantPrice, got.Price.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, got.DiscountPercentage)
			if tt.wantOriginal == "" {
				assert.Nil(t, got.OriginalPrice)
			} else {
				require.NotNil(t, got.OriginalPrice)
				assert.Equal(t, tt.wantOriginal, got.OriginalPrice.StringFixed(2))
			}
		})
	}
}

func TestClassify_AffiliateURL(t *testing.T) {
	c := integration.Candidate{Price: "5", ExternalURL: " https://partner.example.com/p/1 "}
	got := Classify(&c, integration.RunConfig{})

	assert.Equal(t, catalog.CommercialTypeAffiliate, got.Type)
	assert.Equal(t, "https://partner.example.com/p/1", got.AffiliateURL)
}

func TestDiscountPercentage(t *testing.T) {
	assert.Equal(t, 0, DiscountPercentage(decimal.Zero, decimal.NewFromInt(5)))
	assert.Equal(t, 100, DiscountPercentage(decimal.NewFromInt(10), decimal.NewFromInt(-5)))
	assert.Equal(t, 33, DiscountPercentage(decimal.NewFromInt(3), decimal.NewFromInt(2)))
}
