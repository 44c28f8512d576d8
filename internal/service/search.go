package service

import (
	"context"
	"time"

	"github.com/proptalk/proptalk/internal/config"
	"github.com/proptalk/proptalk/internal/dataset"
	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/search"
)

// SearchService handles direct criteria search against the dataset.
type SearchService struct {
	table  *dataset.Table
	engine *search.Engine
	cfg    config.SearchConfig
	log    *logger.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(table *dataset.Table, engine *search.Engine, cfg config.SearchConfig, log *logger.Logger) *SearchService {
	if log == nil {
		log = logger.Nop()
	}
	return &SearchService{
		table:  table,
		engine: engine,
		cfg:    cfg,
		log:    log.WithComponent("search_service"),
	}
}

// Search scores the dataset against the request criteria and returns ranked
// results together with the keyword weights used.
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) *model.SearchResponse {
	startTime := time.Now()

	limit := s.clampLimit(req.Limit)
	results := s.engine.Search(req.Criteria, limit)

	took := time.Since(startTime).Milliseconds()
	s.log.Info("search completed", map[string]interface{}{
		"keywords": len(req.Criteria.Keywords),
		"results":  len(results),
		"limit":    limit,
		"took_ms":  took,
	})

	return &model.SearchResponse{
		Results:        results,
		Total:          len(results),
		KeywordWeights: s.engine.KeywordWeights(req.Criteria.Keywords),
		Took:           took,
	}
}

// Properties returns a raw page of the dataset, for browsing without scoring.
func (s *SearchService) Properties(ctx context.Context, limit, offset int) *model.PropertiesResponse {
	limit = s.clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	return &model.PropertiesResponse{
		Properties: s.table.Page(limit, offset),
		Total:      s.table.Len(),
		Limit:      limit,
		Offset:     offset,
	}
}

// DatasetSize reports how many records are loaded.
func (s *SearchService) DatasetSize() int {
	return s.table.Len()
}

func (s *SearchService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}
