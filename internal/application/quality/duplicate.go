package quality

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
)

// RiskEstimator estimates, 0-100, how likely a candidate duplicates a
// product already in the catalog.
type RiskEstimator interface {
	EstimateRisk(ctx context.Context, platform integration.SourcePlatform, c *integration.Candidate) (int, error)
}

// ConstantRiskEstimator returns the same risk for every candidate
type ConstantRiskEstimator struct {
	Risk int
}

func (e ConstantRiskEstimator) EstimateRisk(context.Context, integration.SourcePlatform, *integration.Candidate) (int, error) {
	return clampScore(e.Risk), nil
}

// ShingleRiskEstimator compares character trigrams of the candidate title
// with recently synced products of the same platform. The risk is the
// best Jaccard similarity scaled to 0-100. The candidate's own row is
// excluded so re-imports are not flagged as duplicates of themselves.
type ShingleRiskEstimator struct {
	products catalog.ProductRepository
	window   int
}

// NewShingleRiskEstimator creates a ShingleRiskEstimator over the last
// window products of each platform.
func NewShingleRiskEstimator(products catalog.ProductRepository, window int) *ShingleRiskEstimator {
	if window <= 0 {
		window = 500
	}
	return &ShingleRiskEstimator{products: products, window: window}
}

func (e *ShingleRiskEstimator) EstimateRisk(ctx context.Context, platform integration.SourcePlatform, c *integration.Candidate) (int, error) {
	target := shingles(c.Name)
	if len(target) == 0 {
		return 0, nil
	}

	names, err := e.products.FindRecentNames(ctx, string(platform), e.window)
	if err != nil {
		return 0, fmt.Errorf("load recent products: %w", err)
	}
	delete(names, catalog.ProductID(string(platform), c.ExternalID))

	best := 0.0
	for _, name := range names {
		if sim := jaccard(target, shingles(name)); sim > best {
			best = sim
		}
	}
	return clampScore(int(math.Round(best * 100))), nil
}

// NewRiskEstimator builds the estimator selected by settings
func NewRiskEstimator(settings quality.DuplicateDetectionSettings, products catalog.ProductRepository) RiskEstimator {
	if settings.Strategy == quality.DuplicateStrategyShingle && products != nil {
		return NewShingleRiskEstimator(products, settings.CompareWindow)
	}
	return ConstantRiskEstimator{Risk: settings.ConstantRisk}
}

func shingles(title string) map[string]struct{} {
	normalized := strings.Join(strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}), " ")
	runes := []rune(normalized)
	set := make(map[string]struct{})
	if len(runes) == 0 {
		return set
	}
	if len(runes) < 3 {
		set[normalized] = struct{}{}
		return set
	}
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
