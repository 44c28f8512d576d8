package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/proptalk/proptalk/internal/agent"
	"github.com/proptalk/proptalk/internal/config"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/profile"
	"github.com/proptalk/proptalk/internal/search"
)

// scriptedAI plays back canned completions in order. The chat flow calls the
// model three times per message (orchestrator, extractor, sales), so scripts
// are written in that order.
type scriptedAI struct {
	replies []string
	calls   int
	enabled bool
}

func (s *scriptedAI) next() (string, error) {
	if s.calls >= len(s.replies) {
		return "", errors.New("no scripted reply left")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func (s *scriptedAI) ChatCompletion(ctx context.Context, req agent.ChatCompletionRequest) (*agent.ChatCompletionResponse, error) {
	reply, err := s.next()
	if err != nil {
		return nil, err
	}
	return &agent.ChatCompletionResponse{
		Choices: []agent.ChatChoice{
			{Message: agent.ChatMessage{Role: "assistant", Content: reply}, FinishReason: "stop"},
		},
	}, nil
}

func (s *scriptedAI) ChatCompletionStream(ctx context.Context, req agent.ChatCompletionRequest, callback agent.StreamCallback) error {
	reply, err := s.next()
	if err != nil {
		return err
	}
	// Two chunks so accumulation is actually exercised.
	half := len(reply) / 2
	if err := callback(&agent.StreamChunk{Content: reply[:half]}); err != nil {
		return err
	}
	return callback(&agent.StreamChunk{Content: reply[half:], Done: true})
}

func (s *scriptedAI) IsEnabled() bool {
	return s.enabled
}

func testRecords() []model.PropertyRecord {
	return []model.PropertyRecord{
		{
			ProjectName:  "Sobha Dream Acres",
			Developer:    "Sobha",
			Location:     "Panathur",
			Region:       "East Bangalore",
			PricePerSqft: "₹8,200",
		},
		{
			ProjectName:  "Brigade Utopia",
			Developer:    "Brigade",
			Location:     "Varthur",
			Region:       "East Bangalore",
			PricePerSqft: "₹7,100",
		},
		{
			ProjectName:  "Prestige Park Grove",
			Developer:    "Prestige",
			Location:     "Whitefield",
			Region:       "East Bangalore",
			PricePerSqft: "₹9,400",
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
			CardLimit:    12,
			CompactLimit: 6,
		},
		Profiles: config.ProfilesConfig{
			DefaultUser: "user_001",
		},
	}
}

func newTestAssistant(t *testing.T, ai agent.AIClient, records []model.PropertyRecord) (*AssistantService, *profile.Manager) {
	t.Helper()

	store, err := profile.NewFileStore(filepath.Join(t.TempDir(), "profiles.json"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	profiles := profile.NewManager(store, nil)
	engine := search.NewEngine(records, nil, nil)

	assistant := NewAssistantService(
		profiles,
		engine,
		agent.NewOrchestrator(ai, nil),
		agent.NewExtractor(ai, nil),
		agent.NewSalesAgent(ai, nil),
		testConfig(),
		nil,
	)
	return assistant, profiles
}
