package runtime

import (
	"strconv"

	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/gamestate"
)

// EvaluateAll reports whether every condition holds (logical AND). An
// empty list passes vacuously, the default for nodes and choices.
// There is no built-in OR: composite logic is expressed by
// restructuring the graph.
func (e *Engine) EvaluateAll(conds []domain.Condition, store *gamestate.Store) bool {
	for _, c := range conds {
		if !e.Evaluate(c, store) {
			return false
		}
	}
	return true
}

// Evaluate resolves a single compiled condition against the store.
// Unparseable conditions are false: unknown input never grants access.
func (e *Engine) Evaluate(c domain.Condition, store *gamestate.Store) bool {
	switch c.Kind {
	case domain.CondLiteral:
		return c.Bool

	case domain.CondFlag:
		return store.GetFlag(c.Key)

	case domain.CondContext:
		v, ok := store.GetContext(c.Key)
		return ok && truthy(v)

	case domain.CondQuest:
		status, ok := store.GetQuestStatus(c.Key)
		return ok && status == domain.QuestActive

	case domain.CondCompare:
		left, ok := resolveOperand(c.Left, store)
		if !ok {
			return false
		}
		right, ok := resolveOperand(c.Right, store)
		if !ok {
			return false
		}
		return compare(left, c.Op, right)

	default:
		e.logger.Debug("unknown condition treated as false", "condition", c.Raw())
		return false
	}
}

// resolveOperand produces the concrete value of one comparison side.
// Flags always resolve (missing flags read as false); a missing context
// path or quest record fails the whole condition.
func resolveOperand(o domain.Operand, store *gamestate.Store) (any, bool) {
	switch o.Kind {
	case domain.OperandFlag:
		return store.GetFlag(o.Key), true
	case domain.OperandContext:
		return store.GetContext(o.Key)
	case domain.OperandQuest:
		status, ok := store.GetQuestStatus(o.Key)
		return string(status), ok
	case domain.OperandLiteral:
		return o.Val, true
	default:
		return nil, false
	}
}

func compare(left any, op domain.CompareOp, right any) bool {
	switch op {
	case domain.OpEq:
		return looseEqual(left, right)
	case domain.OpNotEq:
		return !looseEqual(left, right)
	case domain.OpHas:
		seq, ok := left.([]any)
		if !ok {
			return false
		}
		for _, item := range seq {
			if looseEqual(item, right) {
				return true
			}
		}
		return false
	}

	// Ordering operators: numeric when both sides coerce, else
	// lexicographic for strings, else false.
	lf, lok := coerceNumber(left)
	rf, rok := coerceNumber(right)
	if lok && rok {
		switch op {
		case domain.OpGreater:
			return lf > rf
		case domain.OpLess:
			return lf < rf
		case domain.OpGreaterEq:
			return lf >= rf
		case domain.OpLessEq:
			return lf <= rf
		}
		return false
	}

	ls, lok2 := left.(string)
	rs, rok2 := right.(string)
	if lok2 && rok2 {
		switch op {
		case domain.OpGreater:
			return ls > rs
		case domain.OpLess:
			return ls < rs
		case domain.OpGreaterEq:
			return ls >= rs
		case domain.OpLessEq:
			return ls <= rs
		}
	}
	return false
}

// looseEqual compares scalars the way the authoring format expects:
// numbers compare numerically even across representations, everything
// else by exact value.
func looseEqual(a, b any) bool {
	af, aok := coerceNumber(a)
	bf, bok := coerceNumber(b)
	if aok && bok {
		return af == bf
	}
	if aok != bok {
		return false
	}
	return a == b
}

// coerceNumber extends gamestate.AsNumber with numeric strings, which
// appear as bare literals in the string DSL.
func coerceNumber(v any) (float64, bool) {
	if f, ok := gamestate.AsNumber(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// truthy applies standard falsy rules: absent, false, zero, empty
// string and empty collections are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		if f, ok := gamestate.AsNumber(v); ok {
			return f != 0
		}
		return true
	}
}
