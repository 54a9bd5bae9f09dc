package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mojomast/arbor/pkg/adapters/memory"
	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/gamestate"
)

func newTestEngine() *Engine {
	loader, _ := memory.NewLoader()
	return NewEngine(loader)
}

func TestEvaluate_Flag(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()

	assert.False(t, e.Evaluate(domain.ParseCondition("flag.has_key"), store),
		"missing flags read as false")

	store.SetFlag("has_key", true)
	assert.True(t, e.Evaluate(domain.ParseCondition("flag.has_key"), store))
}

func TestEvaluate_ContextTruthiness(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()
	cond := domain.ParseCondition("context.npc.mood")

	assert.False(t, e.Evaluate(cond, store), "missing paths are false")

	require.NoError(t, store.SetContext("npc.mood", ""))
	assert.False(t, e.Evaluate(cond, store), "empty string is falsy")

	require.NoError(t, store.SetContext("npc.mood", "friendly"))
	assert.True(t, e.Evaluate(cond, store))

	require.NoError(t, store.SetContext("npc.mood", 0))
	assert.False(t, e.Evaluate(cond, store), "zero is falsy")
}

func TestEvaluate_Quest(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()
	cond := domain.ParseCondition(map[string]any{"type": "quest", "key": "herbalist"})

	assert.False(t, e.Evaluate(cond, store))

	store.SetQuestStatus("herbalist", domain.QuestActive)
	assert.True(t, e.Evaluate(cond, store), "active quests are truthy")

	store.SetQuestStatus("herbalist", domain.QuestCompleted)
	assert.False(t, e.Evaluate(cond, store), "only active quests are truthy")
}

func TestEvaluate_Comparisons(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()
	require.NoError(t, store.SetContext("gold", 50))
	require.NoError(t, store.SetContext("name", "Mira"))
	store.SetFlag("met_before", false)

	tests := []struct {
		cond string
		want bool
	}{
		{"context.gold >= 50", true},
		{"context.gold > 50", false},
		{"context.gold <= 50", true},
		{"context.gold < 10", false},
		{"context.gold == 50", true},
		{"context.gold != 50", false},
		{"context.gold = 50", true},
		{"context.name == Mira", true},
		{"context.name == 'Mira'", true},
		{"context.name != Bors", true},
		{"flag.met_before == false", true},
		{"flag.met_before == true", false},
		// Missing context path fails the whole comparison.
		{"context.ghost == 1", false},
		{"context.ghost != 1", false},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Evaluate(domain.ParseCondition(tt.cond), store))
		})
	}
}

func TestEvaluate_CrossRepresentationNumbers(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()

	// Stored as int, compared against a DSL float literal.
	require.NoError(t, store.SetContext("gold", 50))
	assert.True(t, e.Evaluate(domain.ParseCondition("context.gold == 50.0"), store))

	// Stored as numeric string.
	require.NoError(t, store.SetContext("level", "3"))
	assert.True(t, e.Evaluate(domain.ParseCondition("context.level >= 2"), store))
}

func TestEvaluate_Has(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()
	require.NoError(t, store.SetContext("inventory", []any{"rope", "torch"}))

	cond := domain.ParseCondition(map[string]any{
		"type": "context", "key": "inventory", "operator": "has", "value": "rope",
	})
	assert.True(t, e.Evaluate(cond, store))

	cond = domain.ParseCondition(map[string]any{
		"type": "context", "key": "inventory", "operator": "has", "value": "sword",
	})
	assert.False(t, e.Evaluate(cond, store))

	// Non-sequence left side never matches.
	cond = domain.ParseCondition(map[string]any{
		"type": "context", "key": "gold", "operator": "has", "value": 1,
	})
	assert.False(t, e.Evaluate(cond, store))
}

func TestEvaluate_InvalidIsFalse(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()
	assert.False(t, e.Evaluate(domain.ParseCondition("total nonsense"), store))
	assert.False(t, e.Evaluate(domain.ParseCondition(12.5), store))
}

func TestEvaluateAll(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()
	store.SetFlag("a", true)

	assert.True(t, e.EvaluateAll(nil, store), "empty list passes")
	assert.True(t, e.EvaluateAll([]domain.Condition{
		domain.ParseCondition("flag.a"),
	}, store))
	assert.False(t, e.EvaluateAll([]domain.Condition{
		domain.ParseCondition("flag.a"),
		domain.ParseCondition("flag.b"),
	}, store), "AND semantics")
}

func TestEvaluate_StringOrdering(t *testing.T) {
	e := newTestEngine()
	store := gamestate.NewStore()
	require.NoError(t, store.SetContext("rank", "captain"))

	assert.True(t, e.Evaluate(domain.ParseCondition("context.rank > admiral"), store))
	assert.False(t, e.Evaluate(domain.ParseCondition("context.rank > sergeant"), store))
}
