// Package taxonomy maps external category labels onto the internal
// unified category system.
package taxonomy

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// Request is one lookup: the platform a candidate came from and its
// category labels in platform order.
type Request struct {
	Platform string
	Labels   []string
}

// Resolver is one strategy of the resolution chain. It returns a nil
// category, and no error, when it has no answer.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, req Request) (*catalog.Category, error)
}

// Resolution is the category a chain settled on and the strategy that
// produced it.
type Resolution struct {
	Category *catalog.Category
	Strategy string
}

// Chain runs resolvers in order; the first non-nil category wins
type Chain []Resolver

// Resolve returns nil when every resolver came up empty
func (c Chain) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	for _, r := range c {
		category, err := r.Resolve(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s resolver: %w", r.Name(), err)
		}
		if category != nil {
			return &Resolution{Category: category, Strategy: r.Name()}, nil
		}
	}
	return nil, nil
}

// Normalizer picks the chain matching a run's category mapping mode.
// Auto runs the full chain: learned mappings, keyword matching, then the
// catch-all. Manual only consults learned mappings, so unmapped labels
// surface as mapping failures instead of being guessed.
type Normalizer struct {
	auto   Chain
	manual Chain
	logger *zap.Logger
}

// NewNormalizer builds the standard chains over the given repositories
func NewNormalizer(
	categories catalog.CategoryRepository,
	mappings catalog.CategoryMappingRepository,
	matcher KeywordMatcher,
	defaultSlug string,
	logger *zap.Logger,
) *Normalizer {
	cached := NewMappingResolver(categories, mappings)
	return &Normalizer{
		auto: Chain{
			cached,
			NewKeywordResolver(categories, mappings, matcher, logger),
			NewDefaultResolver(categories, defaultSlug),
		},
		manual: Chain{cached},
		logger: logger,
	}
}

// Normalize resolves labels for platform under mode. A nil resolution
// means the candidate has no internal category.
func (n *Normalizer) Normalize(ctx context.Context, platform integration.SourcePlatform, labels []string, mode integration.CategoryMappingMode) (*Resolution, error) {
	chain := n.auto
	if mode == integration.CategoryMappingManual {
		chain = n.manual
	}
	res, err := chain.Resolve(ctx, Request{Platform: string(platform), Labels: labels})
	if err != nil {
		return nil, err
	}
	if res == nil {
		n.logger.Debug("No category resolved",
			zap.String("platform", string(platform)),
			zap.Strings("labels", labels),
			zap.String("mode", string(mode)),
		)
	}
	return res, nil
}
