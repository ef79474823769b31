package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

// SessionStore defines the driven port for session-login mode persistence.
// The adapter is responsible for sealing the bearer token at rest.
type SessionStore interface {
	// Get returns (nil, nil) when the session does not exist or has expired.
	Get(ctx context.Context, id string) (*model.Session, error)
	// Save inserts or replaces the session.
	Save(ctx context.Context, sess model.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions whose expiry is at or before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
