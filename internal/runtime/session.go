package runtime

import (
	"context"
	"fmt"
	"sort"

	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/gamestate"
)

// Start seeds the store with the tree's variable defaults and enters
// the start node.
func (e *Engine) Start(ctx context.Context, state *domain.SessionState, store *gamestate.Store) (*domain.Presentation, error) {
	tree, err := e.loader.GetTree(state.TreeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree %q: %w", state.TreeID, err)
	}
	store.Seed(tree.Variables)
	return e.Enter(ctx, state, store, tree.StartNode)
}

// Enter resolves a node, applies its entry effects and returns the
// presentable view with the filtered choice list. Unknown ids and nodes
// whose conditions fail resolve to a terminal result, not an error.
// Auto-advance chains are followed inside this single call, bounded by
// the hop budget; a caller always receives either a fully resolved
// presentation or an AutoAdvanceError, never a partial intermediate.
func (e *Engine) Enter(ctx context.Context, state *domain.SessionState, store *gamestate.Store, nodeID string) (*domain.Presentation, error) {
	tree, err := e.loader.GetTree(state.TreeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree %q: %w", state.TreeID, err)
	}

	hops := 0
	var chain []string
	current := nodeID

	for {
		if current == "" {
			return e.terminate(ctx, state, "conversation ended"), nil
		}

		node, ok := tree.Node(current)
		if !ok {
			// Dangling reference: recoverable, ends the conversation.
			e.logger.Warn("transition to unknown node", "tree", tree.ID, "node", current)
			return e.terminate(ctx, state, "unknown node "+current), nil
		}

		if !e.EvaluateAll(node.Conditions, store) {
			e.logger.Debug("node unavailable", "tree", tree.ID, "node", current)
			return e.terminate(ctx, state, "node unavailable"), nil
		}

		// Node-level effects apply unconditionally on entry.
		state.CurrentNodeID = current
		state.History = append(state.History, current)
		chain = append(chain, current)
		e.emitNodeEnter(ctx, state, node, hops > 0)
		e.applyEffects(ctx, state, current, node.Effects, store)

		if node.AutoAdvance && node.NextNode != "" {
			hops++
			if hops > e.budget {
				aaErr := &domain.AutoAdvanceError{NodeChain: chain, Budget: e.budget}
				state.Status = domain.StatusError
				state.Error = aaErr.Error()
				state.Offered = nil
				e.logger.Error("auto-advance budget exceeded", "tree", tree.ID, "chain", chain)
				e.emitSessionEnd(ctx, state, aaErr.Error())
				return nil, aaErr
			}
			e.emitNodeLeave(ctx, state, node, true)
			current = node.NextNode
			continue
		}

		return e.present(tree, node, state, store), nil
	}
}

// Choose takes a choice by its index into the last offered list, applies
// its effects and transitions to its target node. The index refers to
// the filtered list returned by the previous Enter, never to the raw
// authored choices.
func (e *Engine) Choose(ctx context.Context, state *domain.SessionState, store *gamestate.Store, index int) (*domain.Presentation, error) {
	if state.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrSessionNotActive, state.Status)
	}
	if index < 0 || index >= len(state.Offered) {
		return nil, fmt.Errorf("%w: %d not in offered range [0,%d)", domain.ErrInvalidChoice, index, len(state.Offered))
	}

	tree, err := e.loader.GetTree(state.TreeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree %q: %w", state.TreeID, err)
	}
	node, ok := tree.Node(state.CurrentNodeID)
	if !ok {
		return nil, fmt.Errorf("%w: current node %q no longer exists", domain.ErrInvalidChoice, state.CurrentNodeID)
	}

	ordinal := state.Offered[index]
	if ordinal < 0 || ordinal >= len(node.Choices) {
		return nil, fmt.Errorf("%w: stale offered mapping", domain.ErrInvalidChoice)
	}
	choice := node.Choices[ordinal]

	e.emitChoice(ctx, state, node.ID, choice)
	e.applyEffects(ctx, state, node.ID, choice.Effects, store)

	if choice.Once {
		if state.ChosenOnce == nil {
			state.ChosenOnce = make(map[string]bool)
		}
		state.ChosenOnce[onceKey(tree.ID, node.ID, ordinal)] = true
	}

	e.emitNodeLeave(ctx, state, node, false)

	if choice.Terminal() {
		return e.terminate(ctx, state, "conversation ended"), nil
	}
	return e.Enter(ctx, state, store, choice.Goto)
}

// FilterChoices returns the offered view of a node's choices for the
// given state: conditions must pass, consumed once-choices are
// withdrawn, and the result is ordered by priority (stable, higher
// first). The second return value maps offered positions back to
// authored ordinals.
func (e *Engine) FilterChoices(tree *domain.DialogTree, node *domain.DialogNode, state *domain.SessionState, store *gamestate.Store) ([]domain.OfferedChoice, []int) {
	ordinals := make([]int, 0, len(node.Choices))
	for i, ch := range node.Choices {
		if ch.Once && state.ChosenOnce[onceKey(tree.ID, node.ID, i)] {
			continue
		}
		if !e.EvaluateAll(ch.Conditions, store) {
			continue
		}
		ordinals = append(ordinals, i)
	}

	sort.SliceStable(ordinals, func(a, b int) bool {
		return node.Choices[ordinals[a]].Priority > node.Choices[ordinals[b]].Priority
	})

	offered := make([]domain.OfferedChoice, len(ordinals))
	for pos, ord := range ordinals {
		ch := node.Choices[ord]
		offered[pos] = domain.OfferedChoice{
			Index:        pos,
			Text:         ch.Text,
			Requirements: ch.Requirements,
		}
	}
	return offered, ordinals
}

// present builds the presentation for a resolved node and records the
// offered mapping on the state.
func (e *Engine) present(tree *domain.DialogTree, node *domain.DialogNode, state *domain.SessionState, store *gamestate.Store) *domain.Presentation {
	// A node with zero offered choices is still presentable, distinct
	// from an unavailable node. The caller decides how to close it out.
	offered, ordinals := e.FilterChoices(tree, node, state, store)
	state.Status = domain.StatusActive
	state.Offered = ordinals

	return &domain.Presentation{
		NodeID:    node.ID,
		Text:      node.Text,
		Speaker:   node.Speaker,
		Portrait:  node.Portrait,
		VoiceLine: node.VoiceLine,
		Choices:   offered,
	}
}

func (e *Engine) terminate(ctx context.Context, state *domain.SessionState, reason string) *domain.Presentation {
	state.Status = domain.StatusTerminal
	state.Offered = nil
	e.emitSessionEnd(ctx, state, reason)
	return &domain.Presentation{Terminal: true}
}

// onceKey builds the per-session identity of a once-choice:
// (tree, node, authored choice ordinal).
func onceKey(treeID, nodeID string, ordinal int) string {
	return fmt.Sprintf("%s/%s#%d", treeID, nodeID, ordinal)
}
