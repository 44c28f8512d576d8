package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/proptalk/proptalk/internal/agent"
	"github.com/proptalk/proptalk/internal/config"
	"github.com/proptalk/proptalk/internal/dataset"
	"github.com/proptalk/proptalk/internal/profile"
	"github.com/proptalk/proptalk/internal/search"
	"github.com/proptalk/proptalk/internal/service"
)

const fixtureCSV = `Project Name,Developer,Location,Region,Project Type,Project Status,Price per sqft,Nearby Developments,Key Amenities
Sobha Dream Acres,Sobha,Panathur,East Bangalore,Apartment,Under Construction,"₹8,200",Eco World,Pool
Brigade Utopia,Brigade,Varthur,East Bangalore,Apartment,Launched,"₹7,100",ITPL,Gym
Prestige Park Grove,Prestige,Whitefield,East Bangalore,Villa,Ready To Move,"₹9,400",Forum Mall,Clubhouse
`

// scriptedAI returns canned replies in order. The chat flow asks the model
// three times per turn (route, extract, pitch), so scripts follow that order.
type scriptedAI struct {
	mu      sync.Mutex
	replies []string
	enabled bool
}

func (s *scriptedAI) next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return "", fmt.Errorf("no scripted reply left")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

func (s *scriptedAI) ChatCompletion(ctx context.Context, req agent.ChatCompletionRequest) (*agent.ChatCompletionResponse, error) {
	reply, err := s.next()
	if err != nil {
		return nil, err
	}
	return &agent.ChatCompletionResponse{
		Choices: []agent.ChatChoice{{Message: agent.ChatMessage{Role: "assistant", Content: reply}}},
	}, nil
}

func (s *scriptedAI) ChatCompletionStream(ctx context.Context, req agent.ChatCompletionRequest, callback agent.StreamCallback) error {
	reply, err := s.next()
	if err != nil {
		return err
	}
	half := len(reply) / 2
	if err := callback(&agent.StreamChunk{Content: reply[:half]}); err != nil {
		return err
	}
	return callback(&agent.StreamChunk{Content: reply[half:], Done: true})
}

func (s *scriptedAI) IsEnabled() bool { return s.enabled }

// testStack wires real services over the CSV fixture and a scripted model.
type testStack struct {
	router   *gin.Engine
	profiles *profile.Manager
	cfg      *config.Config
}

func newTestStack(t *testing.T, ai agent.AIClient) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "properties.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(fixtureCSV), 0o644))
	table, err := dataset.LoadCSV(csvPath)
	require.NoError(t, err)

	store, err := profile.NewFileStore(filepath.Join(dir, "profiles.json"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	profiles := profile.NewManager(store, nil)

	cfg := &config.Config{
		Search: config.SearchConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
			CardLimit:    12,
			CompactLimit: 6,
		},
		Profiles: config.ProfilesConfig{DefaultUser: "user_001"},
	}

	engine := search.NewEngine(table.Records(), nil, nil)
	orchestrator := agent.NewOrchestrator(ai, nil)
	extractor := agent.NewExtractor(ai, nil)
	sales := agent.NewSalesAgent(ai, nil)

	assistant := service.NewAssistantService(profiles, engine, orchestrator, extractor, sales, cfg, nil)
	searchSvc := service.NewSearchService(table, engine, cfg.Search, nil)

	chatHandler := NewChatHandler(assistant)
	searchHandler := NewSearchHandler(searchSvc)
	funnelHandler := NewFunnelHandler(profiles, assistant, cfg.Profiles.DefaultUser)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/search", searchHandler.Search)
	api.GET("/properties", searchHandler.Properties)
	api.POST("/chat", chatHandler.Chat)
	api.POST("/chat/stream", chatHandler.ChatStream)
	api.GET("/funnels", funnelHandler.List)
	api.POST("/funnels", funnelHandler.Create)
	api.GET("/funnels/active", funnelHandler.Active)
	api.POST("/funnels/:id/activate", funnelHandler.Activate)
	api.GET("/funnels/active/results", funnelHandler.ActiveResults)

	return &testStack{router: router, profiles: profiles, cfg: cfg}
}
