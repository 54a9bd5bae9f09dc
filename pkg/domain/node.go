package domain

// DialogChoice is one outgoing edge of a node: the text offered to the
// player, the target node, and the conditions/effects attached to
// taking it.
type DialogChoice struct {
	Text string `json:"text" yaml:"text"`

	// Goto is the target node id. Empty means the choice ends the
	// conversation (a terminal edge, valid by design).
	Goto string `json:"goto,omitempty" yaml:"goto,omitempty"`

	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Effects    []Effect    `json:"effects,omitempty" yaml:"effects,omitempty"`

	// Priority orders the offered list (higher first, stable).
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`

	// Once withdraws the choice for the rest of the session after it
	// has been taken, even if its conditions still pass.
	Once bool `json:"once,omitempty" yaml:"once,omitempty"`

	// Requirements is optional human-readable requirement text shown
	// by presentation layers next to gated choices.
	Requirements string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// Terminal reports whether taking this choice ends the conversation.
func (c DialogChoice) Terminal() bool { return c.Goto == "" }

// DialogNode is one vertex of the conversation graph: a unit of
// presented dialogue plus its gating conditions and entry effects.
type DialogNode struct {
	// ID is unique within a tree. It is the key of the tree's node map
	// and is restored from it on load.
	ID string `json:"-" yaml:"-"`

	Text      string `json:"text" yaml:"text"`
	Speaker   string `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Portrait  string `json:"portrait,omitempty" yaml:"portrait,omitempty"`
	VoiceLine string `json:"voiceLine,omitempty" yaml:"voiceLine,omitempty"`

	Choices []DialogChoice `json:"choices,omitempty" yaml:"choices,omitempty"`

	// AutoAdvance with a non-empty NextNode makes the session
	// transition without waiting for a choice. This is the only place
	// cycles can occur without user input, so traversal bounds the
	// number of automatic hops per call.
	AutoAdvance bool   `json:"autoAdvance,omitempty" yaml:"autoAdvance,omitempty"`
	NextNode    string `json:"nextNode,omitempty" yaml:"nextNode,omitempty"`

	// Conditions gate whether the node itself is reachable. Effects
	// are applied unconditionally whenever the node is entered.
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Effects    []Effect    `json:"effects,omitempty" yaml:"effects,omitempty"`

	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Priority int      `json:"priority,omitempty" yaml:"priority,omitempty"`
}
