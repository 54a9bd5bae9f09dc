// Package redis persists conversation sessions in Redis and provides a
// distributed locker for multi-replica deployments.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/ports"
)

// Store implements ports.SessionStore on a Redis backend. Sessions are
// stored as JSON documents under "<prefix>session:<id>".
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets an expiry on stored sessions. Zero (the default) keeps
// sessions until deleted.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// NewStore creates a session store on the given client.
func NewStore(client *backend.Client, prefix string, opts ...StoreOption) *Store {
	s := &Store{client: client, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

// Save persists the state as a JSON document.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error saving session %s: %w", sessionID, err)
	}
	return nil
}

// Load retrieves the state for a session ID.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading session %s: %w", sessionID, err)
	}
	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Delete removes the state for a session ID.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis error deleting session %s: %w", sessionID, err)
	}
	return nil
}

// List scans for all stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, s.key("*"), 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), s.key("")))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis error listing sessions: %w", err)
	}
	return ids, nil
}

var _ ports.SessionStore = (*Store)(nil)
