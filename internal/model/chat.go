package model

// ChatRequest is one user turn of the assistant conversation. UserID is
// optional; the server falls back to its configured default user.
type ChatRequest struct {
	UserID  string `json:"user_id,omitempty"`
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the assistant's answer to one turn: the pitch, the funnel
// state after the turn, and the top property cards.
type ChatResponse struct {
	Reply      string           `json:"reply"`
	Funnel     *SearchFunnel    `json:"funnel,omitempty"`
	NewFunnel  bool             `json:"new_funnel,omitempty"`
	Properties []ScoredProperty `json:"properties"`
	Total      int              `json:"total"`
	Took       int64            `json:"took_ms"`
}

// CreateFunnelRequest starts a fresh funnel for a user.
type CreateFunnelRequest struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

// SwitchFunnelRequest activates an existing funnel.
type SwitchFunnelRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// FunnelsResponse lists a user's funnels.
type FunnelsResponse struct {
	Funnels        []SearchFunnel `json:"funnels"`
	ActiveFunnelID string         `json:"active_funnel_id,omitempty"`
}
