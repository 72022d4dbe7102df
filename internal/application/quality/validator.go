package quality

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
)

// Validation penalties
const (
	penaltyTitleMissing       = 25
	penaltyTitleShort         = 10
	penaltyDescriptionMissing = 25
	penaltyDescriptionShort   = 15
	penaltyPriceMissing       = 20
	penaltyPriceBelowMin      = 10
	penaltyPriceAboveMax      = 5
	penaltyImagesMissing      = 20
	penaltyImageMalformed     = 5
	penaltyImageTooLarge      = 5
	penaltySuspiciousTitle    = 15
	penaltySuspiciousDesc     = 10

	minTitleLength = 10
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".avif": true, ".bmp": true, ".svg": true,
}

var suspiciousPatterns = []*regexp.Regexp{
	// superlatives
	regexp.MustCompile(`(?i)\b(best|cheapest|greatest|lowest)\s+(price\s+)?(ever|in the world|on earth|guaranteed)\b`),
	regexp.MustCompile(`(?i)\b(100% guaranteed|miracle|unbelievable deal|amazing deal)\b`),
	// urgency
	regexp.MustCompile(`(?i)\b(act now|limited time|buy now|order now|hurry|while supplies last|today only|last chance)\b`),
	regexp.MustCompile(`(?i)\b(click here|free money|risk[- ]free)\b`),
	// currency-symbol spam
	regexp.MustCompile(`[$€£¥]{2,}`),
}

// Validator scores the structural completeness of a candidate
type Validator struct{}

// NewValidator creates a Validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate starts from 100 and subtracts a fixed penalty per detected
// issue. A candidate is valid only when the score reaches the minimum AND
// no issue at all was found.
func (v *Validator) Validate(c *integration.Candidate, settings quality.Settings) quality.ValidationResult {
	rules := settings.Validation
	score := 100
	issues := make([]string, 0)
	penalize := func(points int, issue string) {
		score -= points
		issues = append(issues, issue)
	}

	title := strings.TrimSpace(c.Name)
	switch {
	case title == "":
		if rules.RequireTitle {
			penalize(penaltyTitleMissing, "title is missing")
		}
	case utf8.RuneCountInString(title) < minTitleLength:
		penalize(penaltyTitleShort, fmt.Sprintf("title is shorter than %d characters", minTitleLength))
	}

	description := strings.TrimSpace(c.Description)
	switch {
	case description == "":
		if rules.RequireDescription {
			penalize(penaltyDescriptionMissing, "description is missing")
		}
	case utf8.RuneCountInString(description) < rules.MinDescriptionLength:
		penalize(penaltyDescriptionShort, fmt.Sprintf("description is shorter than %d characters", rules.MinDescriptionLength))
	}

	price, parsed := c.ListPrice()
	if (!parsed || !price.IsPositive()) && rules.RequirePrice {
		penalize(penaltyPriceMissing, "price is missing or not positive")
	}
	if parsed {
		if price.LessThan(rules.MinPriceValue) {
			penalize(penaltyPriceBelowMin, fmt.Sprintf("price %s is below minimum %s", price, rules.MinPriceValue))
		}
		if price.GreaterThan(rules.MaxPriceValue) {
			penalize(penaltyPriceAboveMax, fmt.Sprintf("price %s is above maximum %s", price, rules.MaxPriceValue))
		}
	}

	if len(c.Images) == 0 {
		if rules.RequireImages {
			penalize(penaltyImagesMissing, "images are missing")
		}
	}
	for i, img := range c.Images {
		if !IsValidImageURL(img.Src) {
			penalize(penaltyImageMalformed, fmt.Sprintf("image %d has an invalid url", i+1))
		}
		if rules.MaxImageFileSize > 0 && img.SizeBytes > rules.MaxImageFileSize {
			penalize(penaltyImageTooLarge, fmt.Sprintf("image %d exceeds %d bytes", i+1, rules.MaxImageFileSize))
		}
	}

	if title != "" && isSuspicious(title) {
		penalize(penaltySuspiciousTitle, "title contains suspicious promotional phrasing")
	}
	if description != "" && isSuspicious(description) {
		penalize(penaltySuspiciousDesc, "description contains suspicious promotional phrasing")
	}

	score = clampScore(score)
	result := quality.ValidationResult{
		IsValid: score >= settings.Thresholds.ValidationMinScore && len(issues) == 0,
		Score:   score,
		Issues:  issues,
	}
	if !result.IsValid {
		result.RejectionReason = quality.ReasonMissingData
	}
	return result
}

// IsValidImageURL accepts absolute http(s) URLs whose path has an image
// extension, or whose text mentions "image" or "photo".
func IsValidImageURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return true
	}
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "image") || strings.Contains(lower, "photo")
}

func isSuspicious(text string) bool {
	for _, re := range suspiciousPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
