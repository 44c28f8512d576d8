package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/utils"
)

// Actions the orchestrator can decide on.
const (
	ActionUpdate = "UPDATE"
	ActionNew    = "NEW"
)

// Decision is the orchestrator's verdict for one user message.
type Decision struct {
	Action              string `json:"action"`
	SuggestedFunnelName string `json:"suggested_funnel_name"`
}

const orchestrationPrompt = `You are the Orchestrator. Manage User Search Intent.

Active Funnel: "%s"
Active Criteria: %s

User Input: "%s"

Task:
- Detect if the user is continuing the current search OR starting a completely new topic.
- Example Continue: "What is the price?", "Show me 3BHKs there".
- Example New: "Actually, look at North Bangalore", "Start over", "Search for Brigade properties instead".

Output JSON:
{
    "action": "UPDATE" or "NEW",
    "suggested_funnel_name": "Name of new funnel if NEW"
}`

// Orchestrator decides whether a message continues the active search funnel
// or opens a new one.
type Orchestrator struct {
	client AIClient
	log    *logger.Logger
}

// NewOrchestrator creates an orchestration agent.
func NewOrchestrator(client AIClient, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{client: client, log: log.WithComponent("orchestrator")}
}

// Decide classifies message against the active funnel. It never fails: any
// client or parse error falls back to UPDATE, which keeps the conversation
// in the funnel the user was already working in.
func (o *Orchestrator) Decide(ctx context.Context, message string, funnel *model.SearchFunnel) Decision {
	fallback := Decision{Action: ActionUpdate}

	if o.client == nil || !o.client.IsEnabled() {
		return fallback
	}

	funnelName := "General"
	criteriaJSON := "{}"
	if funnel != nil {
		if funnel.Name != "" {
			funnelName = funnel.Name
		}
		if raw, err := json.Marshal(funnel.Criteria); err == nil {
			criteriaJSON = string(raw)
		}
	}

	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "user", Content: fmt.Sprintf(orchestrationPrompt, funnelName, criteriaJSON, message)},
		},
		Temperature:    0.3,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := o.client.ChatCompletion(ctx, req)
	if err != nil {
		o.log.Warn("orchestration failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback
	}

	var decision Decision
	if err := utils.ParseAIJSON(resp.Content(), &decision); err != nil {
		o.log.Warn("orchestration returned unparseable output", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback
	}

	decision.Action = strings.ToUpper(strings.TrimSpace(decision.Action))
	if decision.Action != ActionNew {
		decision.Action = ActionUpdate
	}
	decision.SuggestedFunnelName = strings.TrimSpace(decision.SuggestedFunnelName)

	o.log.Debug("orchestration decision", map[string]interface{}{
		"action":         decision.Action,
		"suggested_name": decision.SuggestedFunnelName,
	})
	return decision
}
