package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
)

// contextProperties is how many results are described to the model.
const contextProperties = 5

const salesPrompt = `You are an expert real estate sales agent with deep market knowledge.

USER CRITERIA:
%s

USER MESSAGE:
"%s"

TOP MATCHING PROPERTIES:
%s

TOTAL MATCHES: %d

GENERATE A RESPONSE THAT:
1. **Acknowledges ALL requirements** (explicit + implicit, including investment goals if mentioned)
2. **Highlights top 3-5 properties** with specific reasons why they match
3. **Provides data-driven insights**:
   - Why these locations are good for investment (if investment goal mentioned)
   - Developer track record and tier
   - Appreciation potential
4. **Asks ONE intelligent follow-up question** to narrow down further

TONE: Professional, consultative, data-driven
LENGTH: 3-4 paragraphs maximum

CRITICAL:
- If user mentioned "3x returns" or investment goals, ADDRESS THIS DIRECTLY
- If user mentioned "category builders", explain which Tier 1 developers are included
- Provide specific numbers and facts, not generic statements
- Focus on the TOP 3 properties, not all %d`

const noResultsReply = `I understand you're looking for properties matching your criteria, but I couldn't find exact matches in our current inventory.

Let me suggest some alternatives:
1. **Expand the location** - Would you consider nearby areas?
2. **Adjust the budget** - I can show you options slightly above or below your range
3. **Different developers** - I can recommend other reputable builders

What would you prefer?`

// SalesAgent turns search results into a consultative reply.
type SalesAgent struct {
	client AIClient
	log    *logger.Logger
}

// NewSalesAgent creates a sales agent.
func NewSalesAgent(client AIClient, log *logger.Logger) *SalesAgent {
	if log == nil {
		log = logger.Nop()
	}
	return &SalesAgent{client: client, log: log.WithComponent("sales")}
}

// Pitch writes the assistant reply for a set of search results. It always
// returns something usable: a suggestion list when nothing matched, and a
// plain count summary when the model call fails.
func (s *SalesAgent) Pitch(ctx context.Context, criteria model.CriteriaMap, results []model.ScoredProperty, message string) string {
	if len(results) == 0 {
		return noResultsReply
	}
	if s.client == nil || !s.client.IsEnabled() {
		return fallbackReply(len(results))
	}

	resp, err := s.client.ChatCompletion(ctx, s.buildRequest(criteria, results, message))
	if err != nil {
		s.log.Warn("sales pitch failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackReply(len(results))
	}

	reply := strings.TrimSpace(resp.Content())
	if reply == "" {
		return fallbackReply(len(results))
	}
	return reply
}

// PitchStream is the streaming variant of Pitch. onDelta receives reply
// fragments as they arrive; the full reply is returned at the end. Like
// Pitch it never fails, falling back to the count summary when the stream
// produced nothing.
func (s *SalesAgent) PitchStream(ctx context.Context, criteria model.CriteriaMap, results []model.ScoredProperty, message string, onDelta func(delta string) error) string {
	if len(results) == 0 {
		s.emit(onDelta, noResultsReply)
		return noResultsReply
	}
	if s.client == nil || !s.client.IsEnabled() {
		reply := fallbackReply(len(results))
		s.emit(onDelta, reply)
		return reply
	}

	var full strings.Builder
	err := s.client.ChatCompletionStream(ctx, s.buildRequest(criteria, results, message), func(chunk *StreamChunk) error {
		if chunk.Content == "" {
			return nil
		}
		full.WriteString(chunk.Content)
		if onDelta != nil {
			return onDelta(chunk.Content)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("sales pitch stream failed", map[string]interface{}{
			"error":   err.Error(),
			"partial": full.Len(),
		})
		if full.Len() == 0 {
			reply := fallbackReply(len(results))
			s.emit(onDelta, reply)
			return reply
		}
	}

	return strings.TrimSpace(full.String())
}

func (s *SalesAgent) emit(onDelta func(string) error, reply string) {
	if onDelta == nil {
		return
	}
	if err := onDelta(reply); err != nil {
		s.log.Warn("sales pitch delivery failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *SalesAgent) buildRequest(criteria model.CriteriaMap, results []model.ScoredProperty, message string) ChatCompletionRequest {
	criteriaJSON := "{}"
	if raw, err := json.Marshal(criteria); err == nil {
		criteriaJSON = string(raw)
	}

	prompt := fmt.Sprintf(salesPrompt, criteriaJSON, message, buildPropertyContext(results), len(results), len(results))
	return ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "user", Content: prompt},
		},
	}
}

// buildPropertyContext renders the top results as prompt context blocks.
func buildPropertyContext(results []model.ScoredProperty) string {
	limit := min(contextProperties, len(results))

	var b strings.Builder
	for i := 0; i < limit; i++ {
		p := results[i]
		fmt.Fprintf(&b, "**%s** by %s\n", valueOr(p.ProjectName, "Unknown"), valueOr(p.Developer, "Unknown"))
		fmt.Fprintf(&b, "- Location: %s\n", valueOr(p.Location, "Unknown"))
		fmt.Fprintf(&b, "- Type: %s\n", valueOr(p.ProjectType, "Unknown"))
		fmt.Fprintf(&b, "- Price: ₹%s per sq ft\n", valueOr(p.PricePerSqft, "N/A"))
		fmt.Fprintf(&b, "- Status: %s\n", valueOr(p.ProjectStatus, "N/A"))
		fmt.Fprintf(&b, "- Match Score: %.1f (Matches: %s)\n\n", p.Score, strings.Join(p.MatchedTerms, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func fallbackReply(total int) string {
	return fmt.Sprintf("I found %d properties matching your criteria. Let me show you the top options.", total)
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
