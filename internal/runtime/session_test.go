package runtime

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mojomast/arbor/pkg/adapters/memory"
	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/gamestate"
)

func engineFromJSON(t *testing.T, docs ...string) *Engine {
	t.Helper()
	raw := make([][]byte, len(docs))
	for i, d := range docs {
		raw[i] = []byte(d)
	}
	loader, err := memory.NewLoaderFromJSON(raw...)
	require.NoError(t, err)
	return NewEngine(loader)
}

const gateTree = `{
  "id": "gate",
  "startNode": "gate",
  "nodes": {
    "gate": {
      "text": "The gate is locked.",
      "choices": [
        {"text": "Unlock it", "goto": "open", "conditions": ["flag.has_key"]},
        {"text": "Walk away"}
      ]
    },
    "open": {"text": "The gate swings open."}
  }
}`

func TestStart_PresentsFilteredChoices(t *testing.T) {
	e := engineFromJSON(t, gateTree)
	state := domain.NewSessionState("s1", "gate")
	store := gamestate.NewStore()

	view, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)

	assert.Equal(t, "gate", view.NodeID)
	assert.Equal(t, "The gate is locked.", view.Text)
	require.Len(t, view.Choices, 1, "gated choice is hidden without the flag")
	assert.Equal(t, "Walk away", view.Choices[0].Text)
	assert.Equal(t, domain.StatusActive, state.Status)
	assert.Equal(t, []int{1}, state.Offered, "offered indices map to authored ordinals")
}

func TestChoose_IndexesFilteredListNotAuthored(t *testing.T) {
	e := engineFromJSON(t, gateTree)
	state := domain.NewSessionState("s1", "gate")
	store := gamestate.NewStore()
	store.SetFlag("has_key", true)

	view, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)
	require.Len(t, view.Choices, 2)

	// Index 0 of the filtered list is the unlock choice.
	view, err = e.Choose(context.Background(), state, store, 0)
	require.NoError(t, err)
	assert.Equal(t, "open", view.NodeID)
}

func TestChoose_InvalidIndex(t *testing.T) {
	e := engineFromJSON(t, gateTree)
	state := domain.NewSessionState("s1", "gate")
	store := gamestate.NewStore()

	_, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)

	_, err = e.Choose(context.Background(), state, store, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidChoice)
	_, err = e.Choose(context.Background(), state, store, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidChoice)
}

func TestChoose_TerminalChoiceEndsConversation(t *testing.T) {
	e := engineFromJSON(t, gateTree)
	state := domain.NewSessionState("s1", "gate")
	store := gamestate.NewStore()

	_, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)

	view, err := e.Choose(context.Background(), state, store, 0) // "Walk away"
	require.NoError(t, err)
	assert.True(t, view.Terminal)
	assert.Equal(t, domain.StatusTerminal, state.Status)

	_, err = e.Choose(context.Background(), state, store, 0)
	assert.ErrorIs(t, err, domain.ErrSessionNotActive)
}

func TestEnter_DanglingGotoIsTerminalNotError(t *testing.T) {
	e := engineFromJSON(t, `{
	  "id": "t",
	  "startNode": "a",
	  "nodes": {
	    "a": {"text": "hi", "choices": [{"text": "jump", "goto": "missing"}]}
	  }
	}`)
	state := domain.NewSessionState("s1", "t")
	store := gamestate.NewStore()

	_, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)

	view, err := e.Choose(context.Background(), state, store, 0)
	require.NoError(t, err)
	assert.True(t, view.Terminal)
	assert.Equal(t, domain.StatusTerminal, state.Status)
}

func TestStart_UnavailableStartNodeIsTerminal(t *testing.T) {
	e := engineFromJSON(t, `{
	  "id": "t",
	  "startNode": "a",
	  "nodes": {
	    "a": {"text": "secret", "conditions": ["flag.clearance"]}
	  }
	}`)
	state := domain.NewSessionState("s1", "t")
	store := gamestate.NewStore()

	view, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)
	assert.True(t, view.Terminal)
}

func TestOnceChoice_WithdrawnAfterTaken(t *testing.T) {
	e := engineFromJSON(t, `{
	  "id": "elder",
	  "startNode": "hub",
	  "nodes": {
	    "hub": {
	      "text": "Yes?",
	      "choices": [
	        {"text": "Tell me the legend", "goto": "legend", "once": true},
	        {"text": "Nothing"}
	      ]
	    },
	    "legend": {
	      "text": "Long ago...",
	      "choices": [{"text": "Back", "goto": "hub"}]
	    }
	  }
	}`)
	state := domain.NewSessionState("s1", "elder")
	store := gamestate.NewStore()

	view, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)
	require.Len(t, view.Choices, 2)

	view, err = e.Choose(context.Background(), state, store, 0)
	require.NoError(t, err)
	require.Equal(t, "legend", view.NodeID)

	view, err = e.Choose(context.Background(), state, store, 0) // back to hub
	require.NoError(t, err)
	require.Equal(t, "hub", view.NodeID)
	require.Len(t, view.Choices, 1, "once-choice is withdrawn on revisit")
	assert.Equal(t, "Nothing", view.Choices[0].Text)
}

func TestFilterChoices_PriorityOrderingIsStable(t *testing.T) {
	e := engineFromJSON(t, `{
	  "id": "t",
	  "startNode": "a",
	  "nodes": {
	    "a": {
	      "text": "pick",
	      "choices": [
	        {"text": "low", "goto": "a", "priority": -1},
	        {"text": "first-default", "goto": "a"},
	        {"text": "urgent", "goto": "a", "priority": 10},
	        {"text": "second-default", "goto": "a"}
	      ]
	    }
	  }
	}`)
	state := domain.NewSessionState("s1", "t")
	store := gamestate.NewStore()

	view, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)

	texts := make([]string, len(view.Choices))
	for i, c := range view.Choices {
		texts[i] = c.Text
	}
	assert.Equal(t, []string{"urgent", "first-default", "second-default", "low"}, texts)
	assert.Equal(t, []int{2, 1, 3, 0}, state.Offered)
}

func TestAutoAdvance_ChainsThroughNarration(t *testing.T) {
	e := engineFromJSON(t, `{
	  "id": "t",
	  "startNode": "a",
	  "nodes": {
	    "a": {"text": "one", "autoAdvance": true, "nextNode": "b", "effects": ["context.steps=1"]},
	    "b": {"text": "two", "autoAdvance": true, "nextNode": "c",
	          "effects": [{"type": "context", "key": "steps", "action": "add", "value": 1}]},
	    "c": {"text": "three", "choices": [{"text": "done"}]}
	  }
	}`)
	state := domain.NewSessionState("s1", "t")
	store := gamestate.NewStore()

	view, err := e.Start(context.Background(), state, store)
	require.NoError(t, err)

	assert.Equal(t, "c", view.NodeID, "auto-advance resolves inside one call")
	assert.Equal(t, []string{"a", "b", "c"}, state.History)

	// Effects of every traversed node applied exactly once.
	v, _ := store.GetContext("steps")
	assert.Equal(t, 2.0, v)
}

func TestAutoAdvance_CycleExhaustsBudget(t *testing.T) {
	doc := `{
	  "id": "loop",
	  "startNode": "a",
	  "nodes": {
	    "a": {"text": "ping", "autoAdvance": true, "nextNode": "b"},
	    "b": {"text": "pong", "autoAdvance": true, "nextNode": "a"}
	  }
	}`
	loader, err := memory.NewLoaderFromJSON([]byte(doc))
	require.NoError(t, err)
	e := NewEngine(loader, WithAutoAdvanceBudget(5))

	state := domain.NewSessionState("s1", "loop")
	store := gamestate.NewStore()

	_, err = e.Start(context.Background(), state, store)
	require.Error(t, err)

	var aaErr *domain.AutoAdvanceError
	require.ErrorAs(t, err, &aaErr)
	assert.Equal(t, 5, aaErr.Budget)
	assert.Equal(t, 6, len(aaErr.NodeChain))
	assert.Equal(t, domain.StatusError, state.Status, "cycle is an error, not a normal ending")
	assert.NotEmpty(t, state.Error)
}

func TestLifecycleHooks_EmitInOrder(t *testing.T) {
	var events []string
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) {
			events = append(events, fmt.Sprintf("enter:%s", ev.NodeID))
		},
		OnNodeLeave: func(_ context.Context, ev *domain.NodeEvent) {
			events = append(events, fmt.Sprintf("leave:%s", ev.NodeID))
		},
		OnChoice: func(_ context.Context, ev *domain.ChoiceEvent) {
			events = append(events, fmt.Sprintf("choice:%s", ev.Text))
		},
		OnEffect: func(_ context.Context, ev *domain.EffectEvent) {
			events = append(events, fmt.Sprintf("effect:%s", ev.Key))
		},
		OnSessionEnd: func(_ context.Context, ev *domain.SessionEvent) {
			events = append(events, fmt.Sprintf("end:%s", ev.Status))
		},
	}

	doc := `{
	  "id": "t",
	  "startNode": "a",
	  "nodes": {
	    "a": {
	      "text": "hi",
	      "effects": ["set_flag.greeted"],
	      "choices": [{"text": "bye", "effects": ["set_flag.left"]}]
	    }
	  }
	}`
	loader, err := memory.NewLoaderFromJSON([]byte(doc))
	require.NoError(t, err)
	e := NewEngine(loader, WithLifecycleHooks(hooks))

	state := domain.NewSessionState("s1", "t")
	store := gamestate.NewStore()
	ctx := context.Background()

	_, err = e.Start(ctx, state, store)
	require.NoError(t, err)
	_, err = e.Choose(ctx, state, store, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"enter:a",
		"effect:greeted",
		"choice:bye",
		"effect:left",
		"leave:a",
		"end:terminal",
	}, events)
}

// A full conversation across gating, effects, once-choices and quest
// state, exercising the engine the way a game loop would.
func TestConversation_EndToEnd(t *testing.T) {
	doc := `{
	  "id": "village_elder",
	  "startNode": "greeting",
	  "variables": {"gold": 10},
	  "nodes": {
	    "greeting": {
	      "text": "Welcome, traveler.",
	      "speaker": "Elder",
	      "choices": [
	        {"text": "Who are you?", "goto": "intro", "conditions": ["flag.met_before==false"], "once": true},
	        {"text": "Any work for me?", "goto": "quest_offer", "conditions": ["flag.quest_taken==false"]},
	        {"text": "Goodbye."}
	      ]
	    },
	    "intro": {
	      "text": "I am the elder of this village.",
	      "speaker": "Elder",
	      "autoAdvance": true,
	      "nextNode": "greeting",
	      "effects": ["set_flag.met_before"]
	    },
	    "quest_offer": {
	      "text": "Gather three moonherbs for me.",
	      "speaker": "Elder",
	      "effects": [{"type": "quest", "key": "herbalist", "action": "start"}, "set_flag.quest_taken"],
	      "choices": [
	        {"text": "I will.", "goto": "greeting", "effects": [{"type": "context", "key": "reputation", "action": "add", "value": 1}]}
	      ]
	    }
	  }
	}`
	e := engineFromJSON(t, doc)
	state := domain.NewSessionState("s1", "village_elder")
	store := gamestate.NewStore()
	ctx := context.Background()

	// Variables are seeded on start.
	view, err := e.Start(ctx, state, store)
	require.NoError(t, err)
	gold, _ := store.GetContext("gold")
	assert.Equal(t, float64(10), gold)
	require.Len(t, view.Choices, 3)

	// Ask who the elder is: auto-advances back to greeting, and the
	// intro's effect flips met_before, hiding the intro choice.
	view, err = e.Choose(ctx, state, store, 0)
	require.NoError(t, err)
	require.Equal(t, "greeting", view.NodeID)
	require.Len(t, view.Choices, 2)
	assert.Equal(t, "Any work for me?", view.Choices[0].Text)
	assert.True(t, store.GetFlag("met_before"))

	// Take the quest.
	view, err = e.Choose(ctx, state, store, 0)
	require.NoError(t, err)
	require.Equal(t, "quest_offer", view.NodeID)
	status, ok := store.GetQuestStatus("herbalist")
	require.True(t, ok)
	assert.Equal(t, domain.QuestActive, status)

	// Accept: reputation accrues, and back at the greeting the offer is
	// gone because the quest is now active.
	view, err = e.Choose(ctx, state, store, 0)
	require.NoError(t, err)
	require.Equal(t, "greeting", view.NodeID)
	rep, _ := store.GetContext("reputation")
	assert.Equal(t, 1.0, rep)
	require.Len(t, view.Choices, 1)
	assert.Equal(t, "Goodbye.", view.Choices[0].Text)

	// Leave.
	view, err = e.Choose(ctx, state, store, 0)
	require.NoError(t, err)
	assert.True(t, view.Terminal)
	assert.Equal(t, domain.StatusTerminal, state.Status)
}
