package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ConditionKind discriminates the internal condition representation.
// Both authoring forms (raw string DSL and structured object) compile
// into this single tagged union; evaluation never inspects raw input.
type ConditionKind string

const (
	// CondFlag is the truthiness of a boolean flag (missing => false).
	CondFlag ConditionKind = "flag"
	// CondContext is the truthiness of a dotted context path.
	CondContext ConditionKind = "context"
	// CondQuest is the truthiness of a quest record (active => true).
	CondQuest ConditionKind = "quest"
	// CondCompare is a two-operand comparison.
	CondCompare ConditionKind = "compare"
	// CondLiteral is a constant boolean.
	CondLiteral ConditionKind = "literal"
	// CondInvalid marks an unparseable payload. Invalid conditions
	// always evaluate to false: unknown input never grants access.
	CondInvalid ConditionKind = "invalid"
)

// CompareOp is a comparison operator. The single "=" is accepted as an
// alias of "==" for compatibility with the authoring format.
type CompareOp string

const (
	OpEq        CompareOp = "=="
	OpNotEq     CompareOp = "!="
	OpGreater   CompareOp = ">"
	OpLess      CompareOp = "<"
	OpGreaterEq CompareOp = ">="
	OpLessEq    CompareOp = "<="
	// OpHas checks that the left operand is a sequence containing the right.
	OpHas CompareOp = "has"
)

// compareScanOrder is the operator scan order for the string DSL.
// Multi-character operators must be tested first so that ">=" is never
// misparsed as ">" followed by a stray "=".
var compareScanOrder = []struct {
	token string
	op    CompareOp
}{
	{">=", OpGreaterEq},
	{"<=", OpLessEq},
	{"!=", OpNotEq},
	{"==", OpEq},
	{">", OpGreater},
	{"<", OpLess},
	{"=", OpEq},
}

// OperandKind discriminates a comparison operand.
type OperandKind string

const (
	OperandFlag    OperandKind = "flag"
	OperandContext OperandKind = "context"
	OperandQuest   OperandKind = "quest"
	OperandLiteral OperandKind = "literal"
)

// Operand is one side of a comparison: either a store reference
// (flag key, context path, quest key) or a literal value.
type Operand struct {
	Kind OperandKind
	Key  string
	Val  any
}

// Condition is the compiled form of a gating condition. The original
// authored payload is retained so serialization round-trips exactly.
type Condition struct {
	raw any

	Kind  ConditionKind
	Key   string  // CondFlag / CondContext / CondQuest
	Op    CompareOp
	Left  Operand // CondCompare
	Right Operand // CondCompare
	Bool  bool    // CondLiteral
}

// conditionObject is the structured authoring form.
type conditionObject struct {
	Type     string `mapstructure:"type"`
	Key      string `mapstructure:"key"`
	Operator string `mapstructure:"operator"`
	Value    any    `mapstructure:"value"`
}

// objectOperators maps the structured operator vocabulary onto CompareOp.
var objectOperators = map[string]CompareOp{
	"equals":         OpEq,
	"not_equals":     OpNotEq,
	"greater":        OpGreater,
	"less":           OpLess,
	"greater_equals": OpGreaterEq,
	"less_equals":    OpLessEq,
	"has":            OpHas,
}

// ParseCondition compiles an authored condition payload (string, bool or
// structured object) into its internal form. It never fails: payloads
// that match no known shape compile to CondInvalid, which evaluates to
// false. Authoring errors must not crash a running conversation.
func ParseCondition(raw any) Condition {
	c := parseCondition(raw)
	c.raw = raw
	return c
}

func parseCondition(raw any) Condition {
	switch v := raw.(type) {
	case string:
		return parseStringCondition(v)
	case bool:
		return Condition{Kind: CondLiteral, Bool: v}
	case map[string]any:
		return parseObjectCondition(v)
	case Condition:
		return v
	default:
		return Condition{Kind: CondInvalid}
	}
}

// parseStringCondition implements the raw-string DSL. Comparison
// scanning runs before the prefix rules because prefixed references
// also appear as operands ("flag.met_before==false").
func parseStringCondition(s string) Condition {
	s = strings.TrimSpace(s)

	if left, op, right, ok := splitComparison(s); ok {
		return Condition{
			Kind:  CondCompare,
			Op:    op,
			Left:  parseOperand(left),
			Right: parseOperand(right),
		}
	}

	switch {
	case strings.HasPrefix(s, "flag."):
		return Condition{Kind: CondFlag, Key: strings.TrimPrefix(s, "flag.")}
	case strings.HasPrefix(s, "context."):
		return Condition{Kind: CondContext, Key: strings.TrimPrefix(s, "context.")}
	case s == "true":
		return Condition{Kind: CondLiteral, Bool: true}
	case s == "false":
		return Condition{Kind: CondLiteral, Bool: false}
	}
	return Condition{Kind: CondInvalid}
}

// splitComparison splits once on the first operator match, testing
// operators in compareScanOrder.
func splitComparison(s string) (left string, op CompareOp, right string, ok bool) {
	for _, cand := range compareScanOrder {
		if i := strings.Index(s, cand.token); i >= 0 {
			return s[:i], cand.op, s[i+len(cand.token):], true
		}
	}
	return "", "", "", false
}

// parseOperand resolves one side of a string-DSL comparison: a
// flag/context reference if prefixed, else a numeric literal, else a
// boolean literal, else an opaque string literal.
func parseOperand(s string) Operand {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "flag."):
		return Operand{Kind: OperandFlag, Key: strings.TrimPrefix(s, "flag.")}
	case strings.HasPrefix(s, "context."):
		return Operand{Kind: OperandContext, Key: strings.TrimPrefix(s, "context.")}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Operand{Kind: OperandLiteral, Val: f}
	}
	switch s {
	case "true":
		return Operand{Kind: OperandLiteral, Val: true}
	case "false":
		return Operand{Kind: OperandLiteral, Val: false}
	}
	return Operand{Kind: OperandLiteral, Val: unquote(s)}
}

// unquote strips a matching pair of wrapping quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func parseObjectCondition(m map[string]any) Condition {
	var obj conditionObject
	if err := mapstructure.Decode(m, &obj); err != nil {
		return Condition{Kind: CondInvalid}
	}

	var refKind OperandKind
	switch obj.Type {
	case "flag":
		refKind = OperandFlag
	case "context":
		refKind = OperandContext
	case "quest":
		refKind = OperandQuest
	default:
		return Condition{Kind: CondInvalid}
	}
	if obj.Key == "" {
		return Condition{Kind: CondInvalid}
	}

	// No operator: a bare namespace reference checked for truthiness.
	if obj.Operator == "" {
		switch refKind {
		case OperandFlag:
			return Condition{Kind: CondFlag, Key: obj.Key}
		case OperandContext:
			return Condition{Kind: CondContext, Key: obj.Key}
		default:
			return Condition{Kind: CondQuest, Key: obj.Key}
		}
	}

	op, ok := objectOperators[obj.Operator]
	if !ok {
		return Condition{Kind: CondInvalid}
	}
	return Condition{
		Kind:  CondCompare,
		Op:    op,
		Left:  Operand{Kind: refKind, Key: obj.Key},
		Right: Operand{Kind: OperandLiteral, Val: obj.Value},
	}
}

// Raw returns the authored payload this condition was compiled from.
func (c Condition) Raw() any { return c.raw }

// Valid reports whether the payload matched a known shape.
func (c Condition) Valid() bool { return c.Kind != CondInvalid && c.Kind != "" }

// Label returns a short human-readable form for diagnostics and graph
// edge labels.
func (c Condition) Label() string {
	if s, ok := c.raw.(string); ok {
		return s
	}
	if c.Kind == CondCompare {
		return fmt.Sprintf("%s.%s %s %v", c.Left.Kind, c.Left.Key, c.Op, c.Right.Val)
	}
	return fmt.Sprintf("%v", c.raw)
}

// MarshalJSON emits the authored payload unchanged so that
// serialization round-trips exactly.
func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.raw)
}

// UnmarshalJSON compiles the payload on load.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ParseCondition(raw)
	return nil
}

// MarshalYAML emits the authored payload unchanged.
func (c Condition) MarshalYAML() (any, error) {
	return c.raw, nil
}

// UnmarshalYAML compiles the payload on load.
func (c *Condition) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*c = ParseCondition(raw)
	return nil
}
