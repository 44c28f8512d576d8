package agent

import (
	"context"
	"fmt"

	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/utils"
)

const extractionPrompt = `You are a property search criteria extractor.

EXTRACTION RULES:
1. Extract ONLY what the user explicitly mentions
2. DO NOT expand or infer additional keywords
3. If user says "KIADB", extract ["KIADB"] - nothing more
4. If user says "North Bangalore near Airport", extract ["North Bangalore", "Airport"]

USER MESSAGE:
"%s"

EXTRACT as JSON:
{
    "keywords": [<ONLY keywords user explicitly said, e.g., ["KIADB", "Airport"]>],
    "bedrooms": <number or null>,
    "max_price": <number in rupees or null>,
    "min_price": <number in rupees or null>,
    "developers": [<ONLY explicitly mentioned developer names>],
    "project_type": "<type or null>",
    "possession": "<possession status or null>",
    "investment_goal": <true if investment/ROI mentioned, else false>,
    "amenities": [<list of amenities if mentioned>]
}

CRITICAL:
- keywords: ONLY what user said (e.g., ["North Bangalore", "Airport", "KIADB"])
- NO expansion (don't add Devanahalli, Thanisandra, etc.)
- NO inference (don't assume anything)
- Return ONLY valid JSON, no explanation`

// Extractor pulls structured search criteria out of a chat message. It
// extracts only what the user explicitly said, with no expansion, so the
// funnel criteria stay under the user's control.
type Extractor struct {
	client AIClient
	log    *logger.Logger
}

// NewExtractor creates an extraction agent.
func NewExtractor(client AIClient, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{client: client, log: log.WithComponent("extractor")}
}

// Extract returns the criteria present in message. It never fails: any
// client or parse error yields an empty map so the caller can carry on
// with the criteria it already has. Null values in the extraction are kept
// as nils, which the criteria merge treats as deletions.
func (e *Extractor) Extract(ctx context.Context, message string) model.CriteriaMap {
	if e.client == nil || !e.client.IsEnabled() {
		return model.CriteriaMap{}
	}

	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "user", Content: fmt.Sprintf(extractionPrompt, message)},
		},
		Temperature:    0.3,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := e.client.ChatCompletion(ctx, req)
	if err != nil {
		e.log.Warn("criteria extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
		return model.CriteriaMap{}
	}

	var criteria model.CriteriaMap
	if err := utils.ParseAIJSON(resp.Content(), &criteria); err != nil {
		e.log.Warn("criteria extraction returned unparseable output", map[string]interface{}{
			"error": err.Error(),
		})
		return model.CriteriaMap{}
	}
	if criteria == nil {
		criteria = model.CriteriaMap{}
	}

	e.log.Debug("criteria extracted", map[string]interface{}{
		"keys": len(criteria),
	})
	return criteria
}
