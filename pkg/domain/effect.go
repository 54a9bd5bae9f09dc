package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EffectKind discriminates the internal effect representation.
type EffectKind string

const (
	// EffectSetFlag writes a boolean flag.
	EffectSetFlag EffectKind = "set_flag"
	// EffectToggleFlag inverts a boolean flag.
	EffectToggleFlag EffectKind = "toggle_flag"
	// EffectContext mutates a dotted context path (set/add/subtract).
	EffectContext EffectKind = "context"
	// EffectQuest transitions a quest record (start/complete/fail).
	EffectQuest EffectKind = "quest"
	// EffectInvalid marks an unparseable payload. Invalid effects are
	// no-ops: authoring errors must not crash a running conversation.
	EffectInvalid EffectKind = "invalid"
)

// Context mutation operations.
const (
	ContextSet      = "set"
	ContextAdd      = "add"
	ContextSubtract = "subtract"
)

// Quest transition operations.
const (
	QuestOpStart    = "start"
	QuestOpComplete = "complete"
	QuestOpFail     = "fail"
)

// Effect is the compiled form of a store mutation. As with Condition,
// the authored payload is retained for exact serialization round-trips.
type Effect struct {
	raw any

	Kind      EffectKind
	Key       string // flag key, context path or quest key
	FlagValue bool   // EffectSetFlag
	Op        string // EffectContext / EffectQuest operation
	Value     any    // EffectContext operand
}

// effectObject is the structured authoring form.
type effectObject struct {
	Type   string `mapstructure:"type"`
	Key    string `mapstructure:"key"`
	Action string `mapstructure:"action"`
	Value  any    `mapstructure:"value"`
}

// ParseEffect compiles an authored effect payload (string or structured
// object) into its internal form. Unknown shapes compile to
// EffectInvalid, which applies as a no-op.
func ParseEffect(raw any) Effect {
	e := parseEffect(raw)
	e.raw = raw
	return e
}

func parseEffect(raw any) Effect {
	switch v := raw.(type) {
	case string:
		return parseStringEffect(v)
	case map[string]any:
		return parseObjectEffect(v)
	case Effect:
		return v
	default:
		return Effect{Kind: EffectInvalid}
	}
}

// parseStringEffect implements the short string forms:
// "set_flag.<key>", "unset_flag.<key>" and "context.<path>=<value>".
func parseStringEffect(s string) Effect {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "set_flag."):
		return Effect{Kind: EffectSetFlag, Key: strings.TrimPrefix(s, "set_flag."), FlagValue: true}
	case strings.HasPrefix(s, "unset_flag."):
		return Effect{Kind: EffectSetFlag, Key: strings.TrimPrefix(s, "unset_flag."), FlagValue: false}
	case strings.HasPrefix(s, "context."):
		rest := strings.TrimPrefix(s, "context.")
		path, val, ok := strings.Cut(rest, "=")
		if !ok || path == "" {
			return Effect{Kind: EffectInvalid}
		}
		return Effect{
			Kind:  EffectContext,
			Key:   strings.TrimSpace(path),
			Op:    ContextSet,
			Value: parseLiteral(strings.TrimSpace(val)),
		}
	}
	return Effect{Kind: EffectInvalid}
}

// parseLiteral resolves the right-hand side of a context assignment:
// numeric if parseable, else boolean, else the string itself.
func parseLiteral(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return unquote(s)
}

func parseObjectEffect(m map[string]any) Effect {
	var obj effectObject
	if err := mapstructure.Decode(m, &obj); err != nil {
		return Effect{Kind: EffectInvalid}
	}
	if obj.Key == "" {
		return Effect{Kind: EffectInvalid}
	}

	switch obj.Type {
	case "flag":
		switch obj.Action {
		case "set":
			return Effect{Kind: EffectSetFlag, Key: obj.Key, FlagValue: true}
		case "unset":
			return Effect{Kind: EffectSetFlag, Key: obj.Key, FlagValue: false}
		case "toggle":
			return Effect{Kind: EffectToggleFlag, Key: obj.Key}
		}
	case "context":
		switch obj.Action {
		case ContextSet, ContextAdd, ContextSubtract:
			return Effect{Kind: EffectContext, Key: obj.Key, Op: obj.Action, Value: obj.Value}
		}
	case "quest":
		switch obj.Action {
		case QuestOpStart, QuestOpComplete, QuestOpFail:
			return Effect{Kind: EffectQuest, Key: obj.Key, Op: obj.Action}
		}
	}
	return Effect{Kind: EffectInvalid}
}

// Raw returns the authored payload this effect was compiled from.
func (e Effect) Raw() any { return e.raw }

// Valid reports whether the payload matched a known shape.
func (e Effect) Valid() bool { return e.Kind != EffectInvalid && e.Kind != "" }

// Label returns a short human-readable form for diagnostics.
func (e Effect) Label() string {
	if s, ok := e.raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%s %s.%s", e.Op, e.Kind, e.Key)
}

// MarshalJSON emits the authored payload unchanged.
func (e Effect) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.raw)
}

// UnmarshalJSON compiles the payload on load.
func (e *Effect) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = ParseEffect(raw)
	return nil
}

// MarshalYAML emits the authored payload unchanged.
func (e Effect) MarshalYAML() (any, error) {
	return e.raw, nil
}

// UnmarshalYAML compiles the payload on load.
func (e *Effect) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*e = ParseEffect(raw)
	return nil
}
