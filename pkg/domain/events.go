package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter  EventType = "node_enter"
	EventNodeLeave  EventType = "node_leave"
	EventChoice     EventType = "choice"
	EventEffect     EventType = "effect"
	EventSessionEnd EventType = "session_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	TreeID    string    `json:"tree_id"`
}

// NodeEvent represents entry into or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID  string `json:"node_id"`
	Speaker string `json:"speaker,omitempty"`
	// Auto marks entries reached through auto-advance.
	Auto bool `json:"auto,omitempty"`
}

// ChoiceEvent represents a choice being taken.
type ChoiceEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Text   string `json:"text"`
	Goto   string `json:"goto,omitempty"`
	Once   bool   `json:"once,omitempty"`
}

// EffectEvent represents a store mutation.
type EffectEvent struct {
	EventBase
	NodeID string     `json:"node_id"`
	Kind   EffectKind `json:"kind"`
	Key    string     `json:"key"`
}

// SessionEvent represents a session reaching a terminal or error state.
type SessionEvent struct {
	EventBase
	Status SessionStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks
// are optional and invoked synchronously.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *NodeEvent)
	OnNodeLeave  func(context.Context, *NodeEvent)
	OnChoice     func(context.Context, *ChoiceEvent)
	OnEffect     func(context.Context, *EffectEvent)
	OnSessionEnd func(context.Context, *SessionEvent)
}
