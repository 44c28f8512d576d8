package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proptalk/proptalk/internal/agent"
	"github.com/proptalk/proptalk/internal/config"
	"github.com/proptalk/proptalk/internal/dataset"
	"github.com/proptalk/proptalk/internal/handler"
	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/middleware"
	"github.com/proptalk/proptalk/internal/profile"
	"github.com/proptalk/proptalk/internal/search"
	"github.com/proptalk/proptalk/internal/service"
	"github.com/proptalk/proptalk/internal/voice"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("development").Fatal("configuration failed", err, nil)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("proptalk starting", map[string]interface{}{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := dataset.Load(ctx, cfg)
	if err != nil {
		log.Fatal("dataset load failed", err, nil)
	}
	log.Info("dataset loaded", map[string]interface{}{
		"source":  table.Source(),
		"records": table.Len(),
	})

	store, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("profile store failed", err, nil)
	}
	defer store.Close()

	profiles := profile.NewManager(store, log)

	aiClient := agent.NewOpenAIClient(&cfg.OpenAI, log)
	if aiClient.IsEnabled() {
		log.Info("model client ready", map[string]interface{}{
			"api_base": cfg.OpenAI.APIBase,
			"model":    cfg.OpenAI.ChatModel,
		})
	} else {
		log.Warn("model client disabled, set OPENAI_API_KEY to enable extraction and pitches", nil)
	}

	engine := search.NewEngine(table.Records(), nil, log)

	orchestrator := agent.NewOrchestrator(aiClient, log)
	extractor := agent.NewExtractor(aiClient, log)
	sales := agent.NewSalesAgent(aiClient, log)

	assistant := service.NewAssistantService(profiles, engine, orchestrator, extractor, sales, cfg, log)
	searchService := service.NewSearchService(table, engine, cfg.Search, log)

	chatHandler := handler.NewChatHandler(assistant)
	searchHandler := handler.NewSearchHandler(searchService)
	funnelHandler := handler.NewFunnelHandler(profiles, assistant, cfg.Profiles.DefaultUser)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "proptalk",
			"version": Version,
			"dataset": table.Len(),
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/search", searchHandler.Search)
		apiV1.GET("/properties", searchHandler.Properties)

		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/stream", chatHandler.ChatStream)

		apiV1.GET("/funnels", funnelHandler.List)
		apiV1.POST("/funnels", funnelHandler.Create)
		apiV1.GET("/funnels/active", funnelHandler.Active)
		apiV1.POST("/funnels/:id/activate", funnelHandler.Activate)
		apiV1.GET("/funnels/active/results", funnelHandler.ActiveResults)
	}

	if cfg.Voice.Enabled {
		pipeline, err := voice.NewTranscriptPipeline(
			extractor,
			profiles,
			cfg.Profiles.DefaultUser,
			cfg.Voice.TranscriptLog,
			cfg.Voice.Workers,
			log,
		)
		if err != nil {
			log.Fatal("transcript pipeline failed", err, nil)
		}
		defer pipeline.Release()

		voiceHandler := handler.NewVoiceHandler(cfg.Voice, pipeline, log)
		router.POST("/voice", voiceHandler.Answer)
		router.GET("/stream", voiceHandler.Stream)

		log.Info("voice endpoints enabled", map[string]interface{}{
			"dial_number": cfg.Voice.DialNumber,
		})
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("server listening", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", err, nil)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", err, nil)
	}
	log.Info("server stopped", nil)
}

func openStore(cfg *config.Config, log *logger.Logger) (profile.Store, error) {
	switch cfg.Profiles.Backend {
	case "badger":
		return profile.OpenBadger(cfg.Profiles.BadgerDir, false, log)
	default:
		return profile.NewFileStore(cfg.Profiles.Path, log)
	}
}
