package model

// PropertyRecord is one row of the property inventory. The named fields are
// the ones the search engine scores and the agents describe; every other
// source column rides along in Extra under its original (trimmed) header so
// the UI can show it. Missing cells are empty strings. Records have no
// identity of their own and the dataset may contain duplicates.
type PropertyRecord struct {
	ProjectName        string            `json:"project_name"`
	Developer          string            `json:"developer"`
	Location           string            `json:"location"`
	Region             string            `json:"region"`
	ProjectType        string            `json:"project_type"`
	ProjectStatus      string            `json:"project_status"`
	PricePerSqft       string            `json:"price_per_sqft"`
	NearbyDevelopments string            `json:"nearby_developments"`
	KeyAmenities       string            `json:"key_amenities"`
	Extra              map[string]string `json:"extra,omitempty"`
}

// ScoredProperty is a PropertyRecord annotated with its relevance score and
// the keywords that produced it.
type ScoredProperty struct {
	PropertyRecord
	Score        float64  `json:"search_score"`
	MatchedTerms []string `json:"matched_terms"`
}
