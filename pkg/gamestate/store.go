// Package gamestate implements the shared mutable store that dialogue
// evaluation reads and effect application writes: boolean flags, an
// arbitrarily-nested context namespace addressed by dotted paths, and
// quest-status records.
//
// A Store is created once per game session and outlives individual
// dialogue trees. The engine assumes single-writer access per tick (the
// owning game loop serializes calls); no internal locking is performed.
// Adapters that need cross-request coordination serialize access at the
// session-manager level instead.
package gamestate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Jeffail/gabs/v2"

	"github.com/mojomast/arbor/pkg/domain"
)

// Store is the shared game state passed by reference into every
// evaluation and effect application.
type Store struct {
	flags  map[string]bool
	ctx    *gabs.Container
	quests map[string]domain.QuestRecord

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		flags:  make(map[string]bool),
		ctx:    gabs.New(),
		quests: make(map[string]domain.QuestRecord),
		now:    time.Now,
	}
}

// FromSnapshot rebuilds a store from a serialized snapshot.
func FromSnapshot(snap *domain.GameSnapshot) *Store {
	s := NewStore()
	if snap == nil {
		return s
	}
	for k, v := range snap.Flags {
		s.flags[k] = v
	}
	for k, v := range snap.Quests {
		s.quests[k] = v
	}
	if snap.Context != nil {
		// Round-trip through JSON to detach from the caller's maps.
		if raw, err := json.Marshal(snap.Context); err == nil {
			if c, err := gabs.ParseJSON(raw); err == nil {
				s.ctx = c
			}
		}
	}
	return s
}

// GetFlag returns the flag's stored value; missing flags are false.
func (s *Store) GetFlag(key string) bool {
	return s.flags[key]
}

// SetFlag writes a boolean flag.
func (s *Store) SetFlag(key string, value bool) {
	s.flags[key] = value
}

// ToggleFlag inverts a flag and returns the new value.
func (s *Store) ToggleFlag(key string) bool {
	s.flags[key] = !s.flags[key]
	return s.flags[key]
}

// GetContext resolves a dotted path against the context namespace.
// A read-miss (including missing intermediate segments) returns
// ok=false rather than an error.
func (s *Store) GetContext(path string) (any, bool) {
	if path == "" || !s.ctx.ExistsP(path) {
		return nil, false
	}
	return s.ctx.Path(path).Data(), true
}

// SetContext writes a value at a dotted path, auto-creating
// intermediate maps. Writing through an existing non-map segment is
// reported as an error so the applier can log it.
func (s *Store) SetContext(path string, value any) error {
	if path == "" {
		return fmt.Errorf("empty context path")
	}
	if _, err := s.ctx.SetP(value, path); err != nil {
		return fmt.Errorf("failed to set context path %q: %w", path, err)
	}
	return nil
}

// AddContext accumulates a numeric delta at a dotted path. An absent or
// non-numeric current value counts as 0. Returns the new value.
func (s *Store) AddContext(path string, delta float64) (float64, error) {
	cur := 0.0
	if v, ok := s.GetContext(path); ok {
		if f, ok := AsNumber(v); ok {
			cur = f
		}
	}
	next := cur + delta
	if err := s.SetContext(path, next); err != nil {
		return 0, err
	}
	return next, nil
}

// DeleteContext removes a dotted path, if present.
func (s *Store) DeleteContext(path string) {
	_ = s.ctx.DeleteP(path)
}

// GetQuestStatus returns the lifecycle status for a quest key.
func (s *Store) GetQuestStatus(key string) (domain.QuestStatus, bool) {
	rec, ok := s.quests[key]
	return rec.Status, ok
}

// GetQuestRecord returns the full quest record for a key.
func (s *Store) GetQuestRecord(key string) (domain.QuestRecord, bool) {
	rec, ok := s.quests[key]
	return rec, ok
}

// SetQuestStatus writes or overwrites a quest record. The start
// timestamp is set the first time the quest is seen; every write
// refreshes the update timestamp.
func (s *Store) SetQuestStatus(key string, status domain.QuestStatus) {
	rec, ok := s.quests[key]
	if !ok {
		rec = domain.QuestRecord{StartedAt: s.now()}
	}
	rec.Status = status
	rec.UpdatedAt = s.now()
	s.quests[key] = rec
}

// Seed merges top-level values into the context namespace without
// overwriting keys that are already present. Dialogue trees use this to
// apply their variable defaults when a session starts.
func (s *Store) Seed(vars map[string]any) {
	for k, v := range vars {
		if s.ctx.ExistsP(k) {
			continue
		}
		_, _ = s.ctx.SetP(v, k)
	}
}

// Snapshot copies the store into its serializable form.
func (s *Store) Snapshot() *domain.GameSnapshot {
	snap := &domain.GameSnapshot{
		Flags:  make(map[string]bool, len(s.flags)),
		Quests: make(map[string]domain.QuestRecord, len(s.quests)),
	}
	for k, v := range s.flags {
		snap.Flags[k] = v
	}
	for k, v := range s.quests {
		snap.Quests[k] = v
	}
	if m, ok := s.ctx.Data().(map[string]any); ok && len(m) > 0 {
		// Detach via JSON so later mutations don't leak into the snapshot.
		if raw, err := json.Marshal(m); err == nil {
			var copied map[string]any
			if err := json.Unmarshal(raw, &copied); err == nil {
				snap.Context = copied
			}
		}
	}
	return snap
}

// AsNumber coerces JSON-ish scalar values to float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
