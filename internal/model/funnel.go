package model

import "time"

// FunnelStatusActive is the lifecycle status of a funnel that is still being
// refined. Nothing archives funnels yet, so it is the only status written.
const FunnelStatusActive = "active"

// SearchFunnel is one line of inquiry for a user: a named, evolving set of
// search criteria. A user can hold several and switch between them.
type SearchFunnel struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Criteria  CriteriaMap `json:"criteria"`
	Status    string      `json:"status"`
}

// Profile holds the user-facing identity bits of a stored user.
type Profile struct {
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// UserState is everything persisted for one user: profile, funnels, and
// which funnel is currently active.
type UserState struct {
	Profile        Profile        `json:"profile"`
	Funnels        []SearchFunnel `json:"funnels"`
	ActiveFunnelID string         `json:"active_funnel_id,omitempty"`
}

// Funnel returns a pointer to the funnel with the given id, or nil. The
// pointer aliases the slice so callers can mutate in place before saving.
func (u *UserState) Funnel(id string) *SearchFunnel {
	for i := range u.Funnels {
		if u.Funnels[i].ID == id {
			return &u.Funnels[i]
		}
	}
	return nil
}

// Clone deep-copies the state so store snapshots stay isolated from later
// mutation.
func (u *UserState) Clone() *UserState {
	if u == nil {
		return nil
	}
	out := &UserState{
		Profile:        u.Profile,
		ActiveFunnelID: u.ActiveFunnelID,
	}
	if u.Funnels != nil {
		out.Funnels = make([]SearchFunnel, len(u.Funnels))
		for i, f := range u.Funnels {
			f.Criteria = f.Criteria.Clone()
			out.Funnels[i] = f
		}
	}
	return out
}
