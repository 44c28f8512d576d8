package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
)

// Defaults used when callers do not name things.
const (
	DefaultUserName   = "Guest"
	DefaultFunnelName = "New Search"
)

// Manager owns the funnel lifecycle on top of a Store: users are created on
// first touch, and by the time anything asks there is always an active
// funnel to hand back. A single mutex serializes the read-modify-write
// cycles, since the chat API and the voice pipeline update the same
// profiles concurrently.
type Manager struct {
	store Store
	mu    sync.Mutex
	log   *logger.Logger
}

// NewManager wraps a store.
func NewManager(store Store, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{store: store, log: log}
}

// GetOrCreateUser loads a user, creating the profile on first contact.
func (m *Manager) GetOrCreateUser(ctx context.Context, userID, name string) (*model.UserState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateUser(ctx, userID, name)
}

func (m *Manager) getOrCreateUser(ctx context.Context, userID, name string) (*model.UserState, error) {
	state, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state != nil {
		return state, nil
	}

	if name == "" {
		name = DefaultUserName
	}
	state = &model.UserState{
		Profile: model.Profile{Name: name, JoinedAt: time.Now().UTC()},
		Funnels: []model.SearchFunnel{},
	}
	if err := m.store.Put(ctx, userID, state); err != nil {
		return nil, err
	}
	m.log.Info("user created", map[string]interface{}{
		"user_id": userID,
		"name":    name,
	})
	return state, nil
}

// CreateFunnel starts a fresh funnel with empty criteria and makes it the
// user's active one.
func (m *Manager) CreateFunnel(ctx context.Context, userID, name string) (*model.SearchFunnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createFunnel(ctx, userID, name)
}

func (m *Manager) createFunnel(ctx context.Context, userID, name string) (*model.SearchFunnel, error) {
	state, err := m.getOrCreateUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = DefaultFunnelName
	}
	now := time.Now().UTC()
	funnel := model.SearchFunnel{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Criteria:  model.CriteriaMap{},
		Status:    model.FunnelStatusActive,
	}

	state.Funnels = append(state.Funnels, funnel)
	state.ActiveFunnelID = funnel.ID
	if err := m.store.Put(ctx, userID, state); err != nil {
		return nil, err
	}

	m.log.Info("funnel created", map[string]interface{}{
		"user_id":   userID,
		"funnel_id": funnel.ID,
		"name":      name,
	})
	return &funnel, nil
}

// ActiveFunnel returns the user's active funnel, creating the user and the
// funnel as needed and repairing a stale active id.
func (m *Manager) ActiveFunnel(ctx context.Context, userID string) (*model.SearchFunnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.getOrCreateUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if state.ActiveFunnelID != "" {
		if f := state.Funnel(state.ActiveFunnelID); f != nil {
			return f, nil
		}
	}
	return m.createFunnel(ctx, userID, "")
}

// UpdateCriteria merges an update into one funnel's criteria (nil values
// delete keys) and persists. Returns the funnel after the merge.
func (m *Manager) UpdateCriteria(ctx context.Context, userID, funnelID string, update model.CriteriaMap) (*model.SearchFunnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrUserNotFound
	}
	funnel := state.Funnel(funnelID)
	if funnel == nil {
		return nil, ErrFunnelNotFound
	}

	funnel.Criteria = model.MergeCriteria(funnel.Criteria, update)
	funnel.UpdatedAt = time.Now().UTC()

	if err := m.store.Put(ctx, userID, state); err != nil {
		return nil, err
	}

	m.log.Debug("criteria updated", map[string]interface{}{
		"user_id":   userID,
		"funnel_id": funnelID,
		"criteria":  funnel.Criteria,
	})
	return funnel, nil
}

// SwitchFunnel makes an existing funnel the active one.
func (m *Manager) SwitchFunnel(ctx context.Context, userID, funnelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if state == nil {
		return ErrUserNotFound
	}
	if state.Funnel(funnelID) == nil {
		return ErrFunnelNotFound
	}

	state.ActiveFunnelID = funnelID
	if err := m.store.Put(ctx, userID, state); err != nil {
		return err
	}

	m.log.Info("funnel switched", map[string]interface{}{
		"user_id":   userID,
		"funnel_id": funnelID,
	})
	return nil
}

// ListFunnels returns the user's funnels and the active funnel id.
func (m *Manager) ListFunnels(ctx context.Context, userID string) ([]model.SearchFunnel, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.getOrCreateUser(ctx, userID, "")
	if err != nil {
		return nil, "", err
	}
	return state.Funnels, state.ActiveFunnelID, nil
}
