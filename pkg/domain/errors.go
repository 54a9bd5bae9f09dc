package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrTreeNotFound is returned when a tree ID cannot be resolved by the loader.
var ErrTreeNotFound = errors.New("dialog tree not found")

// ErrInvalidChoice is returned when Choose is called with an index that
// is not in the last offered choice list. It indicates a UI/engine
// desync and is surfaced, never silently clamped.
var ErrInvalidChoice = errors.New("invalid choice index")

// ErrSessionNotActive is returned when Choose is called on a terminal
// or broken session.
var ErrSessionNotActive = errors.New("session is not active")

// AutoAdvanceError reports an authoring cycle: a chain of auto-advance
// nodes exceeded the per-call hop budget. The session transitions to
// StatusError rather than Terminal.
type AutoAdvanceError struct {
	// NodeChain is the sequence of automatically entered node ids, in
	// order, up to the point the budget was exhausted.
	NodeChain []string
	Budget    int
}

func (e *AutoAdvanceError) Error() string {
	return fmt.Sprintf("auto-advance budget of %d exceeded: %s", e.Budget, strings.Join(e.NodeChain, " -> "))
}
