package profile

import (
	"context"
	"errors"

	"github.com/proptalk/proptalk/internal/model"
)

var (
	// ErrUserNotFound is returned by operations that need an existing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrFunnelNotFound is returned when a funnel id does not exist for the
	// user.
	ErrFunnelNotFound = errors.New("funnel not found")
)

// Store persists user search state. Get returns (nil, nil) for a user it has
// never seen; the Manager treats that as "create one". Implementations must
// hand back snapshots that later mutation cannot reach.
type Store interface {
	Get(ctx context.Context, userID string) (*model.UserState, error)
	Put(ctx context.Context, userID string, state *model.UserState) error
	Close() error
}
