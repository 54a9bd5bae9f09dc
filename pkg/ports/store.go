package ports

import (
	"context"

	"github.com/mojomast/arbor/pkg/domain"
)

// SessionStore defines the interface for persisting conversation state.
// A session's once-set does not need to outlive the session, but
// callers that want durable conversations (stop & resume) save the full
// state through this interface.
type SessionStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.SessionState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns all stored session IDs.
	List(ctx context.Context) ([]string, error)
}
