package search

import (
	"sort"
	"strings"

	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
)

// DefaultLimit caps results when the caller does not ask for a count.
const DefaultLimit = 20

// priceTolerance widens the max-price cutoff by 10% so near-budget listings
// are not dropped on a technicality.
const priceTolerance = 1.1

// Tier multipliers. Each keyword is tried against the record in this order
// and only its first hit counts.
const (
	projectNameBoost = 10
	developerBoost   = 5
	locationBoost    = 3
	contextBoost     = 1
)

// Engine ranks the inventory against search criteria. It does no I/O and
// holds no mutable state: the same dataset, criteria and limit always
// produce the same slice, in the same order.
type Engine struct {
	records []model.PropertyRecord
	weights WeightCalculator
	log     *logger.Logger
}

// NewEngine builds an engine over the dataset. A nil calculator gets the
// inverse-frequency default over these records; a nil logger is replaced
// with a no-op one.
func NewEngine(records []model.PropertyRecord, weights WeightCalculator, log *logger.Logger) *Engine {
	if weights == nil {
		weights = NewInverseFrequencyCalculator(records)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{records: records, weights: weights, log: log}
}

// Search runs the full pipeline: price pre-filter, keyword scoring, stable
// ordering, truncation. With no keywords it returns the price-filtered
// records in dataset order. limit <= 0 means DefaultLimit.
func (e *Engine) Search(criteria model.SearchCriteria, limit int) []model.ScoredProperty {
	if limit <= 0 {
		limit = DefaultLimit
	}

	filtered := e.preFilter(criteria)

	if len(criteria.Keywords) == 0 {
		head := filtered
		if len(head) > limit {
			head = head[:limit]
		}
		results := make([]model.ScoredProperty, len(head))
		for i, rec := range head {
			results[i] = model.ScoredProperty{PropertyRecord: rec, MatchedTerms: []string{}}
		}
		e.log.Debug("search without keywords", map[string]interface{}{
			"candidates": len(filtered),
			"returned":   len(results),
		})
		return results
	}

	weights := e.weights.Weights(criteria.Keywords)
	e.log.Debug("keyword weights computed", map[string]interface{}{
		"weights": weights,
	})

	keywords := uniqueKeywords(criteria.Keywords)

	scored := make([]model.ScoredProperty, 0, len(filtered))
	for _, rec := range filtered {
		score, matched := scoreRecord(rec, keywords, weights)
		if score <= 0 {
			continue
		}
		scored = append(scored, model.ScoredProperty{
			PropertyRecord: rec,
			Score:          score,
			MatchedTerms:   matched,
		})
	}

	// Stable: equal scores keep dataset order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	matchCount := len(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	e.log.Debug("search completed", map[string]interface{}{
		"candidates": len(filtered),
		"matches":    matchCount,
		"returned":   len(scored),
	})
	return scored
}

// KeywordWeights exposes the weight table for a keyword set, for API
// diagnostics and CLI output.
func (e *Engine) KeywordWeights(keywords []string) map[string]float64 {
	if len(keywords) == 0 {
		return nil
	}
	return e.weights.Weights(keywords)
}

// DatasetSize returns how many records the engine ranks over.
func (e *Engine) DatasetSize() int {
	return len(e.records)
}

// preFilter applies the price bounds. Max is widened by priceTolerance;
// unparsable prices (0) pass any max cut and fail any positive min cut.
func (e *Engine) preFilter(criteria model.SearchCriteria) []model.PropertyRecord {
	maxSet := criteria.MaxPrice != nil && *criteria.MaxPrice > 0
	minSet := criteria.MinPrice != nil && *criteria.MinPrice > 0
	if !maxSet && !minSet {
		return e.records
	}

	out := make([]model.PropertyRecord, 0, len(e.records))
	for _, rec := range e.records {
		price := ParsePrice(rec.PricePerSqft)
		if maxSet && price > *criteria.MaxPrice*priceTolerance {
			continue
		}
		if minSet && price < *criteria.MinPrice {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// scoreRecord scores one record against the deduplicated keywords. Zero
// weight keywords are skipped outright: they matched nothing dataset-wide
// and must not surface in matched terms.
func scoreRecord(rec model.PropertyRecord, keywords []string, weights map[string]float64) (float64, []string) {
	projectName := strings.ToLower(rec.ProjectName)
	developer := strings.ToLower(rec.Developer)
	location := strings.ToLower(rec.Location)
	contextText := strings.ToLower(rec.Region + " " + rec.NearbyDevelopments + " " + rec.KeyAmenities)

	var score float64
	matched := []string{}

	for _, kw := range keywords {
		weight := weights[kw]
		if weight == 0 {
			continue
		}

		tokens := tokenize(kw)
		switch {
		case matchesAll(tokens, projectName):
			score += weight * projectNameBoost
		case matchesAll(tokens, developer):
			score += weight * developerBoost
		case matchesAll(tokens, location):
			score += weight * locationBoost
		case matchesAll(tokens, contextText):
			score += weight * contextBoost
		default:
			continue
		}
		matched = append(matched, kw)
	}

	return score, matched
}

// uniqueKeywords drops duplicates, keeping first-seen order, so a repeated
// keyword cannot double its contribution.
func uniqueKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
