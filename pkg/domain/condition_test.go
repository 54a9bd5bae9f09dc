package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition_StringDSL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Condition
	}{
		{
			name: "flag truthiness",
			raw:  "flag.has_key",
			want: Condition{Kind: CondFlag, Key: "has_key"},
		},
		{
			name: "context truthiness",
			raw:  "context.npc.mood",
			want: Condition{Kind: CondContext, Key: "npc.mood"},
		},
		{
			name: "literal true",
			raw:  "true",
			want: Condition{Kind: CondLiteral, Bool: true},
		},
		{
			name: "literal false",
			raw:  "false",
			want: Condition{Kind: CondLiteral, Bool: false},
		},
		{
			name: "numeric comparison",
			raw:  "context.gold >= 50",
			want: Condition{
				Kind:  CondCompare,
				Op:    OpGreaterEq,
				Left:  Operand{Kind: OperandContext, Key: "gold"},
				Right: Operand{Kind: OperandLiteral, Val: 50.0},
			},
		},
		{
			name: "single equals alias",
			raw:  "context.class = warrior",
			want: Condition{
				Kind:  CondCompare,
				Op:    OpEq,
				Left:  Operand{Kind: OperandContext, Key: "class"},
				Right: Operand{Kind: OperandLiteral, Val: "warrior"},
			},
		},
		{
			name: "quoted string literal",
			raw:  `context.name == "Mira"`,
			want: Condition{
				Kind:  CondCompare,
				Op:    OpEq,
				Left:  Operand{Kind: OperandContext, Key: "name"},
				Right: Operand{Kind: OperandLiteral, Val: "Mira"},
			},
		},
		{
			name: "garbage is invalid",
			raw:  "gold is plenty",
			want: Condition{Kind: CondInvalid},
		},
		{
			name: "unprefixed reference is invalid",
			raw:  "has_key",
			want: Condition{Kind: CondInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCondition(tt.raw)
			tt.want.raw = tt.raw
			assert.Equal(t, tt.want, got)
		})
	}
}

// A flag reference followed by an operator must parse as a comparison,
// not as a truthiness check on a key that happens to contain "==".
func TestParseCondition_OperatorScanBeatsPrefix(t *testing.T) {
	c := ParseCondition("flag.met_before==false")
	require.Equal(t, CondCompare, c.Kind)
	assert.Equal(t, OpEq, c.Op)
	assert.Equal(t, Operand{Kind: OperandFlag, Key: "met_before"}, c.Left)
	assert.Equal(t, Operand{Kind: OperandLiteral, Val: false}, c.Right)
}

// ">=" must win over ">" so the right operand is not "=50".
func TestParseCondition_MultiCharOperatorsFirst(t *testing.T) {
	c := ParseCondition("context.gold>=50")
	require.Equal(t, CondCompare, c.Kind)
	assert.Equal(t, OpGreaterEq, c.Op)
	assert.Equal(t, Operand{Kind: OperandLiteral, Val: 50.0}, c.Right)

	c = ParseCondition("context.gold!=50")
	assert.Equal(t, OpNotEq, c.Op)
}

func TestParseCondition_Object(t *testing.T) {
	t.Run("bare reference is truthiness", func(t *testing.T) {
		c := ParseCondition(map[string]any{"type": "quest", "key": "herbalist"})
		assert.Equal(t, CondQuest, c.Kind)
		assert.Equal(t, "herbalist", c.Key)
	})

	t.Run("operator builds a comparison", func(t *testing.T) {
		c := ParseCondition(map[string]any{
			"type": "context", "key": "gold", "operator": "greater_equals", "value": 50,
		})
		require.Equal(t, CondCompare, c.Kind)
		assert.Equal(t, OpGreaterEq, c.Op)
		assert.Equal(t, Operand{Kind: OperandContext, Key: "gold"}, c.Left)
		assert.Equal(t, Operand{Kind: OperandLiteral, Val: 50}, c.Right)
	})

	t.Run("has operator", func(t *testing.T) {
		c := ParseCondition(map[string]any{
			"type": "context", "key": "inventory", "operator": "has", "value": "rope",
		})
		require.Equal(t, CondCompare, c.Kind)
		assert.Equal(t, OpHas, c.Op)
	})

	t.Run("unknown type is invalid", func(t *testing.T) {
		c := ParseCondition(map[string]any{"type": "karma", "key": "x"})
		assert.False(t, c.Valid())
	})

	t.Run("unknown operator is invalid", func(t *testing.T) {
		c := ParseCondition(map[string]any{"type": "flag", "key": "x", "operator": "approximately"})
		assert.False(t, c.Valid())
	})

	t.Run("missing key is invalid", func(t *testing.T) {
		c := ParseCondition(map[string]any{"type": "flag"})
		assert.False(t, c.Valid())
	})
}

func TestParseCondition_Bool(t *testing.T) {
	c := ParseCondition(true)
	assert.Equal(t, CondLiteral, c.Kind)
	assert.True(t, c.Bool)
}

func TestParseCondition_UnknownShape(t *testing.T) {
	c := ParseCondition(42)
	assert.False(t, c.Valid())
	assert.Equal(t, 42, c.Raw())
}

// Conditions must serialize back to exactly the payload they were
// authored as, whichever form that was.
func TestCondition_JSONRoundTrip(t *testing.T) {
	payloads := []string{
		`"flag.has_key"`,
		`"context.gold >= 50"`,
		`{"key":"herbalist","operator":"equals","type":"quest","value":"active"}`,
		`true`,
	}
	for _, payload := range payloads {
		var c Condition
		require.NoError(t, json.Unmarshal([]byte(payload), &c))
		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, payload, string(out))
	}
}

func TestCondition_Label(t *testing.T) {
	assert.Equal(t, "flag.has_key", ParseCondition("flag.has_key").Label())

	c := ParseCondition(map[string]any{
		"type": "context", "key": "gold", "operator": "greater", "value": 10,
	})
	assert.Equal(t, "context.gold > 10", c.Label())
}
