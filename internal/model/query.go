package model

// SearchRequest is a direct criteria search against the inventory.
type SearchRequest struct {
	Criteria SearchCriteria `json:"criteria"`
	Limit    int            `json:"limit,omitempty" binding:"omitempty,gte=1"`
}

// SearchResponse carries ranked results for a direct search.
type SearchResponse struct {
	Results []ScoredProperty `json:"results"`
	Total   int              `json:"total"`
	// KeywordWeights is the per-keyword weight table the ranking used,
	// exposed for debugging relevance questions.
	KeywordWeights map[string]float64 `json:"keyword_weights,omitempty"`
	Took           int64              `json:"took_ms"`
}

// PropertiesResponse is a page of the raw inventory.
type PropertiesResponse struct {
	Properties []PropertyRecord `json:"properties"`
	Total      int              `json:"total"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}
