package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/model"
)

// BadgerStore persists user state in a badger key-value database, one JSON
// value per user. It is the backend to pick once profiles outgrow a single
// rewritten file.
type BadgerStore struct {
	db  *badger.DB
	log *logger.Logger
}

// OpenBadger opens (or creates) the store at dir. inMemory skips the
// filesystem entirely, which tests rely on.
func OpenBadger(dir string, inMemory bool, log *logger.Logger) (*BadgerStore, error) {
	if log == nil {
		log = logger.Nop()
	}

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create badger dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{log: log.WithComponent("badger")}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db, log: log}, nil
}

func userKey(userID string) []byte {
	return []byte("user/" + userID)
}

// Get returns the stored state, or (nil, nil) for an unknown user.
func (s *BadgerStore) Get(ctx context.Context, userID string) (*model.UserState, error) {
	var state *model.UserState
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			state = &model.UserState{}
			return json.Unmarshal(val, state)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user %s: %w", userID, err)
	}
	return state, nil
}

// Put stores the state for the user.
func (s *BadgerStore) Put(ctx context.Context, userID string, state *model.UserState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", userID, err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(userID), payload)
	}); err != nil {
		return fmt.Errorf("write user %s: %w", userID, err)
	}
	return nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)

// badgerLogger adapts the application logger to badger's logging interface.
// Badger formats include trailing newlines, hence the trim.
type badgerLogger struct {
	log *logger.Logger
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), nil, nil)
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), nil)
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.log.Info(strings.TrimSpace(fmt.Sprintf(format, args...)), nil)
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), nil)
}

var _ badger.Logger = (*badgerLogger)(nil)
