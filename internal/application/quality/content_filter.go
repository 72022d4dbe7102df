package quality

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
)

// Content policy penalties
const (
	penaltyBlockedKeyword = 20
	penaltyBlockedBrand   = 25
	penaltyInappropriate  = 30
	penaltyContentQuality = 10

	minContentLength      = 20
	lexicalMinWords       = 8
	lexicalMinUniqueRatio = 0.35
	maxSpecialCharRatio   = 0.25
)

// Flag prefixes
const (
	FlagBlockedKeyword = "blocked_keyword:"
	FlagBlockedBrand   = "blocked_brand:"
	FlagCounterfeit    = "counterfeit_indicator:"
	FlagInappropriate  = "inappropriate:"
	FlagQuality        = "quality:"
	FlagSpam           = "spam"
)

var counterfeitIndicators = []string{
	"replica", "knockoff", "knock-off", "knock off", "inspired by", "fake designer",
	"copy of", "1:1 copy", "aaa quality", "mirror quality",
}

type keywordFamily struct {
	name     string
	keywords []string
}

var inappropriateFamilies = []keywordFamily{
	{"adult", []string{"porn", "pornographic", "xxx", "nsfw", "erotic", "sex toy", "escort"}},
	{"violence", []string{"gore", "torture", "massacre", "assault rifle", "bomb making", "terrorist"}},
	{"illegal_substances", []string{"cocaine", "heroin", "methamphetamine", "lsd", "mdma", "ecstasy pills", "narcotics"}},
}

// ContentFilter scores candidate text against the content policy.
// Keyword patterns are compiled once and shared across goroutines.
type ContentFilter struct {
	patterns sync.Map // keyword -> *regexp.Regexp
}

// NewContentFilter creates a ContentFilter
func NewContentFilter() *ContentFilter {
	return &ContentFilter{}
}

// Filter evaluates name, description, brand and sku. The candidate is
// allowed only when the score reaches the allow floor AND no flag was
// raised.
func (f *ContentFilter) Filter(c *integration.Candidate, settings quality.Settings) quality.ContentFilterResult {
	cs := settings.Content
	raw := strings.Join([]string{c.Name, c.Description, c.Brand, c.SKU}, " ")
	blob := strings.ToLower(raw)

	score := 100
	flags := make([]string, 0)

	for _, kw := range cs.BlockedKeywords {
		if f.contains(blob, kw) {
			score -= penaltyBlockedKeyword
			flags = append(flags, FlagBlockedKeyword+normalizeTerm(kw))
		}
	}

	allowed := make(map[string]bool, len(cs.AllowedBrands))
	for _, b := range cs.AllowedBrands {
		allowed[normalizeTerm(b)] = true
	}
	for _, brand := range cs.BlockedBrands {
		b := normalizeTerm(brand)
		if allowed[b] || !f.contains(blob, b) {
			continue
		}
		score -= penaltyBlockedBrand
		flags = append(flags, FlagBlockedBrand+b)
	}

	for _, phrase := range counterfeitIndicators {
		if f.contains(blob, phrase) {
			flags = append(flags, FlagCounterfeit+phrase)
		}
	}

	spam := SpamScore(c.Name + " " + c.Description)
	score -= spam / 2
	if spam >= settings.SpamFlagFloor() {
		flags = append(flags, FlagSpam)
	}

	for _, family := range inappropriateFamilies {
		for _, kw := range family.keywords {
			if f.contains(blob, kw) {
				score -= penaltyInappropriate
				flags = append(flags, FlagInappropriate+family.name)
				break
			}
		}
	}

	for _, issue := range contentQualityIssues(c.Name + " " + c.Description) {
		score -= penaltyContentQuality
		flags = append(flags, FlagQuality+issue)
	}

	score = clampScore(score)
	result := quality.ContentFilterResult{
		IsAllowed: score >= settings.ContentAllowFloor() && len(flags) == 0,
		Score:     score,
		SpamScore: spam,
		Flags:     flags,
	}
	if !result.IsAllowed {
		result.RejectionReason = quality.ReasonContentFiltered
	}
	return result
}

// contains matches term on word boundaries in the lower-cased blob
func (f *ContentFilter) contains(blob, term string) bool {
	term = normalizeTerm(term)
	if term == "" {
		return false
	}
	if re, ok := f.patterns.Load(term); ok {
		return re.(*regexp.Regexp).MatchString(blob)
	}
	re := regexp.MustCompile(`(^|[^\pL\pN])` + regexp.QuoteMeta(term) + `($|[^\pL\pN])`)
	f.patterns.Store(term, re)
	return re.MatchString(blob)
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// contentQualityIssues reports too-short text, low lexical diversity and
// an excessive share of special characters.
func contentQualityIssues(text string) []string {
	var issues []string
	trimmed := strings.TrimSpace(text)

	if utf8.RuneCountInString(trimmed) < minContentLength {
		issues = append(issues, "too_short")
	}

	words := strings.FieldsFunc(strings.ToLower(trimmed), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(words) >= lexicalMinWords {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < lexicalMinUniqueRatio {
			issues = append(issues, "low_lexical_diversity")
		}
	}

	visible, special := 0, 0
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && !strings.ContainsRune(".,-'()/:&%\"", r) {
			special++
		}
	}
	if visible > 0 && float64(special)/float64(visible) > maxSpecialCharRatio {
		issues = append(issues, "excessive_special_characters")
	}
	return issues
}
