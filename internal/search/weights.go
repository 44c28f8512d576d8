package search

import (
	"strings"

	"github.com/proptalk/proptalk/internal/model"
)

// WeightCalculator produces the per-keyword weights scoring multiplies by.
// Implementations must return 0 for a keyword that should be skipped
// entirely.
type WeightCalculator interface {
	Weights(keywords []string) map[string]float64
}

// InverseFrequencyCalculator weighs a keyword by its rarity across the full
// dataset: weight = 100 / matches. One matching record gives the dominant
// weight 100; a keyword matching nothing gets 0. Rarity is always measured
// against the whole dataset, not the price-filtered subset, so a budget cap
// never changes what counts as distinctive.
type InverseFrequencyCalculator struct {
	texts []string
}

// NewInverseFrequencyCalculator precomputes the weighting text per record:
// project name, developer, location, region and nearby developments joined
// by single spaces and lowercased.
func NewInverseFrequencyCalculator(records []model.PropertyRecord) *InverseFrequencyCalculator {
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = strings.ToLower(strings.Join([]string{
			rec.ProjectName,
			rec.Developer,
			rec.Location,
			rec.Region,
			rec.NearbyDevelopments,
		}, " "))
	}
	return &InverseFrequencyCalculator{texts: texts}
}

// Weights computes the weight table for one keyword set. Duplicates collapse
// to a single entry.
func (c *InverseFrequencyCalculator) Weights(keywords []string) map[string]float64 {
	weights := make(map[string]float64, len(keywords))
	for _, kw := range keywords {
		if _, done := weights[kw]; done {
			continue
		}

		tokens := tokenize(kw)
		matches := 0
		for _, text := range c.texts {
			if matchesAll(tokens, text) {
				matches++
			}
		}

		if matches > 0 {
			weights[kw] = 100.0 / float64(matches)
		} else {
			weights[kw] = 0
		}
	}
	return weights
}

var _ WeightCalculator = (*InverseFrequencyCalculator)(nil)

// tokenize lowers a keyword and splits it into whitespace tokens. A keyword
// with no tokens matches any text vacuously.
func tokenize(kw string) []string {
	return strings.Fields(strings.ToLower(kw))
}

// matchesAll reports whether every token is a substring of text. Text must
// already be lowercased.
func matchesAll(tokens []string, text string) bool {
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}
