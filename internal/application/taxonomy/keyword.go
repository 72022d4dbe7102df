package taxonomy

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StrategyKeyword names resolutions produced by keyword matching
const StrategyKeyword = "keyword"

// KeywordRule maps a category slug to the keywords that select it
type KeywordRule struct {
	Slug     string
	Keywords []string
}

// DefaultKeywordRules is the built-in keyword table. Rules are tried in
// order, so earlier slugs win when a label matches several.
var DefaultKeywordRules = []KeywordRule{
	{Slug: "electronics", Keywords: []string{"electronic", "phone", "computer", "laptop", "tablet", "tech", "gadget", "camera", "headphone", "audio"}},
	{Slug: "fashion", Keywords: []string{"fashion", "clothing", "apparel", "shirt", "dress", "shoe", "sneaker", "jewelry", "handbag"}},
	{Slug: "home-garden", Keywords: []string{"home", "kitchen", "furniture", "garden", "decor", "bedding", "lighting"}},
	{Slug: "beauty", Keywords: []string{"beauty", "cosmetic", "makeup", "skincare", "fragrance", "hair care"}},
	{Slug: "sports-outdoors", Keywords: []string{"sport", "fitness", "outdoor", "camping", "cycling", "yoga"}},
	{Slug: "toys-games", Keywords: []string{"toy", "game", "puzzle", "lego", "kids"}},
	{Slug: "books-media", Keywords: []string{"book", "magazine", "music", "movie", "stationery"}},
	{Slug: "automotive", Keywords: []string{"automotive", "vehicle", "motorcycle", "auto parts"}},
	{Slug: "pet-supplies", Keywords: []string{"pet", "dog", "cat", "aquarium"}},
	{Slug: "health", Keywords: []string{"health", "vitamin", "supplement", "wellness"}},
}

// KeywordMatcher maps a free-form label to a category slug
type KeywordMatcher interface {
	Match(label string) (slug string, ok bool)
}

// TableMatcher matches a label against an ordered keyword table. A keyword
// matches when it starts at a word boundary of the label, so "phone"
// matches "Mobile Phones" but "cat" does not match "education".
type TableMatcher struct {
	rules []KeywordRule
}

// NewTableMatcher creates a TableMatcher over rules
func NewTableMatcher(rules []KeywordRule) *TableMatcher {
	normalized := make([]KeywordRule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = normalizeWords(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		normalized = append(normalized, KeywordRule{Slug: strings.ToLower(r.Slug), Keywords: kws})
	}
	return &TableMatcher{rules: normalized}
}

func (m *TableMatcher) Match(label string) (string, bool) {
	text := " " + normalizeWords(label)
	if text == " " {
		return "", false
	}
	for _, r := range m.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, " "+kw) {
				return r.Slug, true
			}
		}
	}
	return "", false
}

// Slugs lists the slugs of the table in order
func (m *TableMatcher) Slugs() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.Slug
	}
	return out
}

// normalizeWords lower-cases s and collapses every run of non
// alphanumerics into one space.
func normalizeWords(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}), " ")
}

// KeywordResolver matches the first label against the keyword table and
// remembers a hit as a new mapping, so the next candidate with the same
// label is served by MappingResolver.
type KeywordResolver struct {
	categories catalog.CategoryRepository
	mappings   catalog.CategoryMappingRepository
	matcher    KeywordMatcher
	logger     *zap.Logger
}

// NewKeywordResolver creates a KeywordResolver
func NewKeywordResolver(categories catalog.CategoryRepository, mappings catalog.CategoryMappingRepository, matcher KeywordMatcher, logger *zap.Logger) *KeywordResolver {
	return &KeywordResolver{categories: categories, mappings: mappings, matcher: matcher, logger: logger}
}

func (r *KeywordResolver) Name() string { return StrategyKeyword }

func (r *KeywordResolver) Resolve(ctx context.Context, req Request) (*catalog.Category, error) {
	if len(req.Labels) == 0 {
		return nil, nil
	}
	label := catalog.NormalizeLabel(req.Labels[0])
	if label == "" {
		return nil, nil
	}

	slug, ok := r.matcher.Match(label)
	if !ok {
		return nil, nil
	}
	category, err := r.categories.FindBySlug(ctx, slug)
	if errors.Is(err, shared.ErrNotFound) {
		r.logger.Warn("Keyword table names a category missing from the taxonomy", zap.String("slug", slug))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	mapping, err := catalog.NewCategoryMapping(req.Platform, label, category.ID, catalog.DefaultConfidence)
	if err != nil {
		return nil, err
	}
	created, err := r.mappings.Create(ctx, mapping)
	if err != nil {
		return nil, err
	}
	if created {
		r.logger.Info("Category mapping learned",
			zap.String("platform", req.Platform),
			zap.String("label", label),
			zap.String("category", category.Slug),
		)
	}
	return category, nil
}
