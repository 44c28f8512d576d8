package service

import (
	"context"
	"time"

	"github.com/proptalk/proptalk/internal/agent"
	"github.com/proptalk/proptalk/internal/config"
	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/profile"
	"github.com/proptalk/proptalk/internal/search"
)

// ChatEventCallback is called for streaming chat events.
type ChatEventCallback func(event string, data any) error

// AssistantService runs the conversational search loop: route the message,
// extract criteria, merge them into the active funnel, search, and pitch.
type AssistantService struct {
	profiles     *profile.Manager
	engine       *search.Engine
	orchestrator *agent.Orchestrator
	extractor    *agent.Extractor
	sales        *agent.SalesAgent
	cfg          *config.Config
	log          *logger.Logger
}

// NewAssistantService creates a new assistant service.
func NewAssistantService(
	profiles *profile.Manager,
	engine *search.Engine,
	orchestrator *agent.Orchestrator,
	extractor *agent.Extractor,
	sales *agent.SalesAgent,
	cfg *config.Config,
	log *logger.Logger,
) *AssistantService {
	if log == nil {
		log = logger.Nop()
	}
	return &AssistantService{
		profiles:     profiles,
		engine:       engine,
		orchestrator: orchestrator,
		extractor:    extractor,
		sales:        sales,
		cfg:          cfg,
		log:          log.WithComponent("assistant"),
	}
}

// Chat handles one user message end to end and returns the reply with the
// funnel state and matching property cards.
func (a *AssistantService) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	return a.chat(ctx, req, nil)
}

// ChatStream is the streaming variant of Chat. Events emitted, in order:
// funnel (the funnel in use), criteria (merged criteria), searching,
// results (total plus cards), then content deltas while the reply streams.
func (a *AssistantService) ChatStream(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	return a.chat(ctx, req, callback)
}

func (a *AssistantService) chat(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	startTime := time.Now()
	userID := a.resolveUserID(req.UserID)

	funnel, err := a.profiles.ActiveFunnel(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Route first: a topic change opens a fresh funnel before extraction so
	// new criteria never land in the old search.
	decision := a.orchestrator.Decide(ctx, req.Message, funnel)
	newFunnel := false
	if decision.Action == agent.ActionNew {
		name := decision.SuggestedFunnelName
		if name == "" {
			name = profile.DefaultFunnelName
		}
		funnel, err = a.profiles.CreateFunnel(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		newFunnel = true
		a.log.Info("new funnel opened", map[string]interface{}{
			"user_id": userID,
			"funnel":  funnel.Name,
		})
	}

	if err := emit(callback, "funnel", map[string]any{
		"funnel": funnel,
		"new":    newFunnel,
	}); err != nil {
		return nil, err
	}

	update := a.extractor.Extract(ctx, req.Message)
	if len(update) > 0 {
		funnel, err = a.profiles.UpdateCriteria(ctx, userID, funnel.ID, update)
		if err != nil {
			return nil, err
		}
	}

	if err := emit(callback, "criteria", funnel.Criteria); err != nil {
		return nil, err
	}
	if err := emit(callback, "searching", map[string]any{
		"status": "Searching properties...",
	}); err != nil {
		return nil, err
	}

	criteria := model.CriteriaFromMap(funnel.Criteria)
	results := a.engine.Search(criteria, a.cfg.Search.DefaultLimit)
	cards := capResults(results, a.cfg.Search.CardLimit)

	if err := emit(callback, "results", map[string]any{
		"total":      len(results),
		"properties": cards,
	}); err != nil {
		return nil, err
	}

	var reply string
	if callback != nil {
		reply = a.sales.PitchStream(ctx, funnel.Criteria, results, req.Message, func(delta string) error {
			return callback("content", map[string]any{"content": delta})
		})
	} else {
		reply = a.sales.Pitch(ctx, funnel.Criteria, results, req.Message)
	}

	return &model.ChatResponse{
		Reply:      reply,
		Funnel:     funnel,
		NewFunnel:  newFunnel,
		Properties: cards,
		Total:      len(results),
		Took:       time.Since(startTime).Milliseconds(),
	}, nil
}

// ActiveResults searches the active funnel's criteria, for the compact
// card view shown alongside the conversation.
func (a *AssistantService) ActiveResults(ctx context.Context, userID string, limit int) (*model.SearchFunnel, []model.ScoredProperty, error) {
	funnel, err := a.profiles.ActiveFunnel(ctx, a.resolveUserID(userID))
	if err != nil {
		return nil, nil, err
	}

	if limit <= 0 {
		limit = a.cfg.Search.CompactLimit
	}
	results := a.engine.Search(model.CriteriaFromMap(funnel.Criteria), limit)
	return funnel, results, nil
}

func (a *AssistantService) resolveUserID(userID string) string {
	if userID == "" {
		return a.cfg.Profiles.DefaultUser
	}
	return userID
}

func emit(callback ChatEventCallback, event string, data any) error {
	if callback == nil {
		return nil
	}
	return callback(event, data)
}

func capResults(results []model.ScoredProperty, limit int) []model.ScoredProperty {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
