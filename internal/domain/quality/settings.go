// Package quality holds the admission scoring model: the settings every
// stage reads, the per-stage results, and the quality metrics record
// written for each admission attempt.
package quality

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ValidationRules configure the completeness stage
type ValidationRules struct {
	RequireTitle         bool            `json:"require_title"`
	RequireDescription   bool            `json:"require_description"`
	RequireImages        bool            `json:"require_images"`
	RequirePrice         bool            `json:"require_price"`
	MinDescriptionLength int             `json:"min_description_length"`
	MinPriceValue        decimal.Decimal `json:"min_price_value"`
	MaxPriceValue        decimal.Decimal `json:"max_price_value"`
	MaxImageFileSize     int64           `json:"max_image_file_size"`
}

// ContentFilterSettings configure the content policy stage
type ContentFilterSettings struct {
	BlockedKeywords []string `json:"blocked_keywords"`
	BlockedBrands   []string `json:"blocked_brands"`
	AllowedBrands   []string `json:"allowed_brands"`
	StrictMode      bool     `json:"strict_mode"`
}

// Duplicate estimation strategies
const (
	DuplicateStrategyConstant = "constant"
	DuplicateStrategyShingle  = "shingle"
)

// DuplicateDetectionSettings configure the duplicate risk stage
type DuplicateDetectionSettings struct {
	Strategy     string `json:"strategy"`
	ConstantRisk int    `json:"constant_risk"`
	// CompareWindow bounds how many recent products the shingle
	// estimator compares against.
	CompareWindow int `json:"compare_window"`
}

// Thresholds are the decision constants of every stage
type Thresholds struct {
	ValidationMinScore      int `json:"validation_min_score"`
	ValidationRejectBelow   int `json:"validation_reject_below"`
	ContentAllowScore       int `json:"content_allow_score"`
	StrictContentAllowScore int `json:"strict_content_allow_score"`
	ContentRejectBelow      int `json:"content_reject_below"`
	SpamFlagScore           int `json:"spam_flag_score"`
	StrictSpamFlagScore     int `json:"strict_spam_flag_score"`
	DuplicateRejectAbove    int `json:"duplicate_reject_above"`
	MinQualityScore         int `json:"min_quality_score"`
	HighQualityScore        int `json:"high_quality_score"`
	GoodQualityScore        int `json:"good_quality_score"`
}

// Weights of the aggregate quality score. Duplicate applies to 100-risk.
type Weights struct {
	Validation float64 `json:"validation"`
	Content    float64 `json:"content"`
	Duplicate  float64 `json:"duplicate"`
}

// Settings is the full, immutable quality-control configuration. Stages
// receive it by value; nothing mutates a Settings after construction.
type Settings struct {
	Validation ValidationRules            `json:"validation"`
	Content    ContentFilterSettings      `json:"content"`
	Duplicate  DuplicateDetectionSettings `json:"duplicate"`
	Thresholds Thresholds                 `json:"thresholds"`
	Weights    Weights                    `json:"weights"`
	// HistoricalWeight blends the platform's mean quality score into the
	// performance-risk check. Zero disables it.
	HistoricalWeight float64 `json:"historical_weight"`
}

// DefaultSettings returns the built-in configuration
func DefaultSettings() Settings {
	return Settings{
		Validation: ValidationRules{
			RequireTitle:         true,
			RequireDescription:   true,
			RequireImages:        true,
			RequirePrice:         true,
			MinDescriptionLength: 50,
			MinPriceValue:        decimal.NewFromInt(1),
			MaxPriceValue:        decimal.NewFromInt(10000),
			MaxImageFileSize:     5 << 20,
		},
		Content: ContentFilterSettings{
			BlockedKeywords: []string{
				"cannabis", "marijuana", "firearm", "ammunition",
				"tobacco", "e-cigarette", "prescription only",
			},
			BlockedBrands: []string{
				"rolex", "louis vuitton", "gucci", "chanel", "hermes", "prada",
			},
			AllowedBrands: []string{},
		},
		Duplicate: DuplicateDetectionSettings{
			Strategy:      DuplicateStrategyConstant,
			ConstantRisk:  10,
			CompareWindow: 500,
		},
		Thresholds: Thresholds{
			ValidationMinScore:      60,
			ValidationRejectBelow:   50,
			ContentAllowScore:       70,
			StrictContentAllowScore: 80,
			ContentRejectBelow:      60,
			SpamFlagScore:           50,
			StrictSpamFlagScore:     25,
			DuplicateRejectAbove:    80,
			MinQualityScore:         60,
			HighQualityScore:        85,
			GoodQualityScore:        75,
		},
		Weights: Weights{
			Validation: 0.4,
			Content:    0.4,
			Duplicate:  0.2,
		},
	}
}

// ContentAllowFloor is the minimum content score for isAllowed
func (s Settings) ContentAllowFloor() int {
	if s.Content.StrictMode {
		return s.Thresholds.StrictContentAllowScore
	}
	return s.Thresholds.ContentAllowScore
}

// SpamFlagFloor is the spam score at which a spam flag is raised
func (s Settings) SpamFlagFloor() int {
	if s.Content.StrictMode {
		return s.Thresholds.StrictSpamFlagScore
	}
	return s.Thresholds.SpamFlagScore
}

// Validate rejects settings a stage could not run with
func (s Settings) Validate() error {
	invalid := func(format string, args ...any) error {
		return shared.NewDomainError("INVALID_SETTINGS", fmt.Sprintf(format, args...))
	}

	v := s.Validation
	if v.MinDescriptionLength < 0 {
		return invalid("min_description_length cannot be negative")
	}
	if v.MinPriceValue.IsNegative() || v.MaxPriceValue.LessThan(v.MinPriceValue) {
		return invalid("price bounds must satisfy 0 <= min <= max")
	}
	if v.MaxImageFileSize < 0 {
		return invalid("max_image_file_size cannot be negative")
	}

	switch s.Duplicate.Strategy {
	case DuplicateStrategyConstant, DuplicateStrategyShingle:
	default:
		return invalid("unknown duplicate strategy %q", s.Duplicate.Strategy)
	}
	if s.Duplicate.ConstantRisk < 0 || s.Duplicate.ConstantRisk > 100 {
		return invalid("constant_risk must be within [0,100]")
	}

	t := s.Thresholds
	for name, val := range map[string]int{
		"validation_min_score":       t.ValidationMinScore,
		"validation_reject_below":    t.ValidationRejectBelow,
		"content_allow_score":        t.ContentAllowScore,
		"strict_content_allow_score": t.StrictContentAllowScore,
		"content_reject_below":       t.ContentRejectBelow,
		"spam_flag_score":            t.SpamFlagScore,
		"strict_spam_flag_score":     t.StrictSpamFlagScore,
		"duplicate_reject_above":     t.DuplicateRejectAbove,
		"min_quality_score":          t.MinQualityScore,
		"high_quality_score":         t.HighQualityScore,
		"good_quality_score":         t.GoodQualityScore,
	} {
		if val < 0 || val > 100 {
			return invalid("%s must be within [0,100], got %d", name, val)
		}
	}
	if t.GoodQualityScore > t.HighQualityScore {
		return invalid("good_quality_score cannot exceed high_quality_score")
	}

	w := s.Weights
	if w.Validation < 0 || w.Content < 0 || w.Duplicate < 0 {
		return invalid("weights cannot be negative")
	}
	if sum := w.Validation + w.Content + w.Duplicate; sum < 0.999 || sum > 1.001 {
		return invalid("weights must sum to 1, got %.3f", sum)
	}
	if s.HistoricalWeight < 0 || s.HistoricalWeight > 1 {
		return invalid("historical_weight must be within [0,1]")
	}
	return nil
}
