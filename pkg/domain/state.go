package domain

// SessionStatus is the traversal state of one conversation instance.
type SessionStatus string

const (
	// StatusActive means a node is being presented and input is awaited.
	StatusActive SessionStatus = "active"
	// StatusTerminal means the conversation ended normally.
	StatusTerminal SessionStatus = "terminal"
	// StatusError means the conversation is broken (authoring cycle),
	// distinct from Terminal so callers can tell "ended" from "broken".
	StatusError SessionStatus = "error"
)

// SessionState is the full traversal state of one conversation. It is
// plain data: the engine is stateless and operates on a state passed in
// by the caller, which makes sessions trivially persistable.
type SessionState struct {
	ID     string `json:"id"`
	TreeID string `json:"tree_id"`

	CurrentNodeID string        `json:"current_node_id"`
	Status        SessionStatus `json:"status"`

	// ChosenOnce tracks consumed once-choices, keyed by
	// (tree, node, choice ordinal) identity.
	ChosenOnce map[string]bool `json:"chosen_once,omitempty"`

	// Offered maps the indices of the last filtered choice list back to
	// the authored choices slice. Choose() indexes into this mapping,
	// never into the raw node choices.
	Offered []int `json:"offered,omitempty"`

	// History records visited node ids, for graph overlays and debugging.
	History []string `json:"history,omitempty"`

	// Error carries the failure description when Status is StatusError.
	Error string `json:"error,omitempty"`

	// Game optionally carries a snapshot of the shared game state, for
	// adapters that persist conversations across processes. Library
	// callers that own their store leave it nil.
	Game *GameSnapshot `json:"game,omitempty"`
}

// NewSessionState creates a fresh session positioned before the tree's
// start node.
func NewSessionState(id, treeID string) *SessionState {
	return &SessionState{
		ID:         id,
		TreeID:     treeID,
		Status:     StatusActive,
		ChosenOnce: make(map[string]bool),
	}
}

// GameSnapshot is a serializable copy of the shared game state.
type GameSnapshot struct {
	Flags   map[string]bool        `json:"flags,omitempty"`
	Context map[string]any         `json:"context,omitempty"`
	Quests  map[string]QuestRecord `json:"quests,omitempty"`
}

// OfferedChoice is one entry of the filtered choice list returned to
// the caller. Index is the position in the filtered list and is the
// value to pass back to Choose.
type OfferedChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	Requirements string `json:"requirements,omitempty"`
}

// Presentation is what the UI layer receives after Enter or Choose: the
// node's display data plus the filtered choice list. When Terminal is
// true no node is being presented and the conversation is over.
type Presentation struct {
	NodeID    string          `json:"node_id,omitempty"`
	Text      string          `json:"text,omitempty"`
	Speaker   string          `json:"speaker,omitempty"`
	Portrait  string          `json:"portrait,omitempty"`
	VoiceLine string          `json:"voice_line,omitempty"`
	Choices   []OfferedChoice `json:"choices,omitempty"`
	Terminal  bool            `json:"terminal"`
}
