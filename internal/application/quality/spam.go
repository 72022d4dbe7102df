package quality

import (
	"regexp"
	"unicode"
)

// Spam score contributions
const (
	spamUppercase        = 20
	spamPunctuationRun   = 10
	spamPromotional      = 15
	spamRepeatedCharRun  = 10
	spamExtraCurrency    = 5
	spamUppercaseRatio   = 0.3
	spamRepeatedRunLen   = 4
	spamFreeCurrencyUses = 3
	maxSpamScore         = 100
)

var (
	punctuationRun     = regexp.MustCompile(`[!?]{2,}`)
	promotionalPhrases = regexp.MustCompile(`(?i)\b(buy now|limited time|act now|order now|click here|best price|lowest price|hot sale|special offer|don'?t miss|free gift|100% off)\b`)
)

// SpamScore rates text 0-100 from surface heuristics: shouting, punctuation
// runs, promotional phrases, repeated characters and currency symbols.
func SpamScore(text string) int {
	score := 0

	letters, upper := 0, 0
	currency := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
		if unicode.Is(unicode.Sc, r) {
			currency++
		}
	}
	if letters > 0 && float64(upper)/float64(letters) > spamUppercaseRatio {
		score += spamUppercase
	}

	score += spamPunctuationRun * len(punctuationRun.FindAllStringIndex(text, -1))
	score += spamPromotional * len(promotionalPhrases.FindAllStringIndex(text, -1))
	score += spamRepeatedCharRun * repeatedRuns(text, spamRepeatedRunLen)

	if currency > spamFreeCurrencyUses {
		score += spamExtraCurrency * (currency - spamFreeCurrencyUses)
	}

	if score > maxSpamScore {
		return maxSpamScore
	}
	return score
}

// repeatedRuns counts maximal runs of at least minLen identical
// non-space runes. Go's regexp has no backreferences, hence the scan.
func repeatedRuns(text string, minLen int) int {
	runs := 0
	var prev rune
	length := 0
	for _, r := range text {
		if r == prev {
			length++
		} else {
			prev = r
			length = 1
		}
		if length == minLen && !unicode.IsSpace(r) {
			runs++
		}
	}
	return runs
}
