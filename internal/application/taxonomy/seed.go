package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EnsureCategories creates any category of the keyword table, plus the
// catch-all, that the taxonomy does not have yet. Existing categories are
// left untouched.
func EnsureCategories(ctx context.Context, categories catalog.CategoryRepository, rules []KeywordRule, defaultSlug string, logger *zap.Logger) error {
	type seed struct {
		slug      string
		isDefault bool
	}
	seeds := make([]seed, 0, len(rules)+1)
	for _, r := range rules {
		seeds = append(seeds, seed{slug: r.Slug})
	}
	if defaultSlug != "" {
		seeds = append(seeds, seed{slug: defaultSlug, isDefault: true})
	}

	created := 0
	for _, s := range seeds {
		_, err := categories.FindBySlug(ctx, s.slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("look up category %s: %w", s.slug, err)
		}
		category, err := catalog.NewCategory(s.slug, displayName(s.slug))
		if err != nil {
			return err
		}
		category.IsDefault = s.isDefault
		if err := categories.Save(ctx, category); err != nil {
			return fmt.Errorf("create category %s: %w", s.slug, err)
		}
		created++
	}
	if created > 0 {
		logger.Info("Taxonomy seeded", zap.Int("created", created))
	}
	return nil
}

// displayName turns "home-garden" into "Home Garden"
func displayName(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
