package quality

import (
	"testing"

	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/stretchr/testify/assert"
)

func TestContentFilter_CleanCandidate(t *testing.T) {
	c := goodCandidate("1")
	result := NewContentFilter().Filter(&c, quality.DefaultSettings())

	assert.True(t, result.IsAllowed)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 0, result.SpamScore)
	assert.Empty(t, result.Flags)
	assert.Empty(t, result.RejectionReason)
}

func TestContentFilter_BlockedKeyword(t *testing.T) {
	c := goodCandidate("1")
	c.Name = "Airtight Glass Storage Jar"
	c.Description = "Glass storage jar for cannabis and dried herbs, airtight bamboo lid and food-safe borosilicate body."

	result := NewContentFilter().Filter(&c, quality.DefaultSettings())

	assert.Equal(t, 80, result.Score)
	assert.False(t, result.IsAllowed)
	assert.Equal(t, []string{"blocked_keyword:cannabis"}, result.Flags)
	assert.Equal(t, quality.ReasonContentFiltered, result.RejectionReason)
}

func TestContentFilter_KeywordMatchesWholeWordsOnly(t *testing.T) {
	settings := quality.DefaultSettings()
	settings.Content.BlockedKeywords = []string{"gun"}

	c := goodCandidate("1")
	c.Description = "A burgundy leather strap for everyday use, stitched by hand and treated against water stains."

	result := NewContentFilter().Filter(&c, settings)
	assert.Empty(t, result.Flags)
	assert.True(t, result.IsAllowed)
}

func TestContentFilter_BlockedBrand(t *testing.T) {
	t.Run("blocked", func(t *testing.T) {
		c := goodCandidate("1")
		c.Brand = "Rolex"

		result := NewContentFilter().Filter(&c, quality.DefaultSettings())

		assert.Equal(t, 75, result.Score)
		assert.Contains(t, result.Flags, "blocked_brand:rolex")
		assert.False(t, result.IsAllowed)
	})

	t.Run("allow list overrides block list", func(t *testing.T) {
		settings := quality.DefaultSettings()
		settings.Content.AllowedBrands = []string{" ROLEX "}

		c := goodCandidate("1")
		c.Brand = "Rolex"

		result := NewContentFilter().Filter(&c, settings)

		assert.Equal(t, 100, result.Score)
		assert.Empty(t, result.Flags)
		assert.True(t, result.IsAllowed)
	})
}

func TestContentFilter_CounterfeitIndicatorFlagsWithoutPenalty(t *testing.T) {
	c := goodCandidate("1")
	c.Name = "Replica Wireless Headphones"

	result := NewContentFilter().Filter(&c, quality.DefaultSettings())

	assert.Equal(t, 100, result.Score)
	assert.Contains(t, result.Flags, "counterfeit_indicator:replica")
	assert.False(t, result.IsAllowed)
}

func TestContentFilter_Inappropriate(t *testing.T) {
	c := goodCandidate("1")
	c.Description = "Vintage poster about the history of cocaine trafficking, printed on heavy matte paper stock."

	result := NewContentFilter().Filter(&c, quality.DefaultSettings())

	assert.Equal(t, 70, result.Score)
	assert.Contains(t, result.Flags, "inappropriate:illegal_substances")
	assert.False(t, result.IsAllowed)
}

func TestContentFilter_QualityIssues(t *testing.T) {
	tests := []struct {
		name string
		cand integration.Candidate
		flag string
	}{
		{
			name: "too short",
			cand: integration.Candidate{ExternalID: "1", Name: "Mug"},
			flag: "quality:too_short",
		},
		{
			name: "low lexical diversity",
			cand: integration.Candidate{ExternalID: "1", Name: "Mug", Description: "good good good good good good good good good good"},
			flag: "quality:low_lexical_diversity",
		},
		{
			name: "excessive special characters",
			cand: integration.Candidate{ExternalID: "1", Name: "Desk lamp ***** ##### @@@@@ +++++"},
			flag: "quality:excessive_special_characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewContentFilter().Filter(&tt.cand, quality.DefaultSettings())
			assert.Contains(t, result.Flags, tt.flag)
			assert.False(t, result.IsAllowed)
		})
	}
}

func TestContentFilter_Spam(t *testing.T) {
	c := integration.Candidate{ExternalID: "1", Name: "AMAZING WATCH!!! BUY NOW!!!"}

	result := NewContentFilter().Filter(&c, quality.DefaultSettings())

	assert.Equal(t, 55, result.SpamScore)
	assert.Contains(t, result.Flags, "spam")
	assert.False(t, result.IsAllowed)
}

func TestContentFilter_StrictMode(t *testing.T) {
	c := goodCandidate("1")
	c.Name = "Electric Kettle"
	c.Description = "Hot sale on this kettle!! with a sturdy handle, fast boil element and automatic shutoff."

	lenient := NewContentFilter().Filter(&c, quality.DefaultSettings())
	assert.Equal(t, 25, lenient.SpamScore)
	assert.Equal(t, 88, lenient.Score)
	assert.NotContains(t, lenient.Flags, "spam")
	assert.True(t, lenient.IsAllowed)

	strict := quality.DefaultSettings()
	strict.Content.StrictMode = true
	result := NewContentFilter().Filter(&c, strict)
	assert.Contains(t, result.Flags, "spam")
	assert.False(t, result.IsAllowed)
}

func TestContentFilter_StrictModeRaisesAllowFloor(t *testing.T) {
	settings := quality.DefaultSettings()
	settings.Content.StrictMode = true
	settings.Content.BlockedKeywords = nil
	settings.Content.BlockedBrands = []string{"acme"}

	c := goodCandidate("1")
	result := NewContentFilter().Filter(&c, settings)

	assert.Equal(t, 75, result.Score)
	assert.Less(t, result.Score, settings.ContentAllowFloor())
	assert.False(t, result.IsAllowed)
}
