package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
)

// FileStore keeps every user in one JSON document and rewrites it in full on
// each save. The layout matches the flat profiles.json this service grew up
// with, so an existing file keeps working. A missing or corrupt file
// degrades to an empty document instead of failing startup.
type FileStore struct {
	path string
	log  *logger.Logger

	mu    sync.Mutex
	users map[string]*model.UserState
}

type fileDocument struct {
	Users map[string]*model.UserState `json:"users"`
}

// NewFileStore loads the document at path, tolerating its absence.
func NewFileStore(path string, log *logger.Logger) (*FileStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &FileStore{
		path:  path,
		log:   log,
		users: make(map[string]*model.UserState),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn("profiles file is corrupt, starting empty", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return s, nil
	}
	if doc.Users != nil {
		s.users = doc.Users
	}
	return s, nil
}

// Get returns a snapshot of the user's state, or (nil, nil) when unknown.
func (s *FileStore) Get(ctx context.Context, userID string) (*model.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID].Clone(), nil
}

// Put stores the state and rewrites the document. Last writer wins.
func (s *FileStore) Put(ctx context.Context, userID string, state *model.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = state.Clone()
	return s.save()
}

// Close is a no-op; every Put already hits disk.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) save() error {
	payload, err := json.MarshalIndent(fileDocument{Users: s.users}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create profiles dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
