// Package session stores per-user conversation state. One session exists
// per WhatsApp user; the engine serializes access with the lock manager
// so concurrent messages from the same user cannot interleave.
package session

import (
	"context"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// Repository persists sessions. Get returns (nil, nil) when the user has
// no live session; expired sessions count as absent.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, userID string) error
}

// Deduper suppresses redelivered messages. MarkProcessed returns true
// the first time a message id is seen inside the dedupe window.
type Deduper interface {
	MarkProcessed(ctx context.Context, messageID string) (bool, error)
}
