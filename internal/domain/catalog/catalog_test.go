package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductID(t *testing.T) {
	assert.Equal(t, "shopify:123", ProductID("shopify", "123"))
	assert.Equal(t, "cj_dropshipping:A-9", ProductID("cj_dropshipping", "A-9"))
	assert.NotEqual(t, ProductID("cj_dropshipping", "1"), ProductID("cj", "dropshipping_1"))
}

func TestAdmittedProduct_Validate(t *testing.T) {
	valid := func() *AdmittedProduct {
		return &AdmittedProduct{
			ID:              ProductID("ebay", "1"),
			SourcePlatform:  "ebay",
			ExternalID:      "1",
			CommercialType:  CommercialTypeNative,
			AdmissionStatus: AdmissionStatusPreview,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*AdmittedProduct)
		wantErr bool
	}{
		{"valid", func(*AdmittedProduct) {}, false},
		{"id mismatch", func(p *AdmittedProduct) { p.ID = "ebay:2" }, true},
		{"missing external id", func(p *AdmittedProduct) { p.ExternalID = "" }, true},
		{"unknown type", func(p *AdmittedProduct) { p.CommercialType = "wholesale" }, true},
		{"missing status", func(p *AdmittedProduct) { p.AdmissionStatus = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			if tt.wantErr {
				assert.Error(t, p.Validate())
			} else {
				assert.NoError(t, p.Validate())
			}
		})
	}
}

func TestAdmissionStatus_IsAdmitted(t *testing.T) {
	assert.False(t, AdmissionStatusRejected.IsAdmitted())
	assert.True(t, AdmissionStatusPreview.IsAdmitted())
	assert.True(t, AdmissionStatusPublished.IsAdmitted())
}

func TestNewCategoryMapping(t *testing.T) {
	catID := uuid.New()

	m, err := NewCategoryMapping("amazon", "  Cell Phones ", catID, DefaultConfidence)
	require.NoError(t, err)
	assert.Equal(t, "cell phones", m.ExternalLabel)
	assert.True(t, m.IsActive)
	assert.Equal(t, 0.8, m.Confidence)

	_, err = NewCategoryMapping("amazon", "", catID, 0.8)
	assert.Error(t, err)
	_, err = NewCategoryMapping("amazon", "x", uuid.Nil, 0.8)
	assert.Error(t, err)
	_, err = NewCategoryMapping("amazon", "x", catID, 1.2)
	assert.Error(t, err)
}

func TestNewCategory(t *testing.T) {
	c, err := NewCategory(" Electronics ", "Electronics")
	require.NoError(t, err)
	assert.Equal(t, "electronics", c.Slug)

	_, err = NewCategory("", "x")
	assert.Error(t, err)
}
