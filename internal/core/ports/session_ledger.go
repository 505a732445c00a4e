package ports

import (
	"context"
	"time"

	"github.com/centralauth/centralauth/internal/core/domain"
)

// SessionLedger is the durable record of refresh-token sessions.
//
// CompareAndRevoke must be atomic at the storage layer, not merely
// in-process: the single-flight refresh guarantee depends on exactly one
// caller flipping the revoked flag, and the authority may run as multiple
// replicas sharing one store.
type SessionLedger interface {
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)
	GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error)
	// CompareAndRevoke flips revoked from false to true. It returns false
	// when the session was already revoked or does not exist.
	CompareAndRevoke(ctx context.Context, sessionID string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
	// DeleteExpiredBefore hard-deletes sessions whose expiry predates cutoff.
	// It only touches terminal rows, so it cannot race CompareAndRevoke.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
