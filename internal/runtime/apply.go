package runtime

import (
	"context"

	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/gamestate"
)

// Apply mutates the store according to a single compiled effect.
// Unknown effect shapes are no-ops, never fatal: authoring errors must
// not crash a running conversation. They are logged for content authors.
func (e *Engine) Apply(eff domain.Effect, store *gamestate.Store) {
	switch eff.Kind {
	case domain.EffectSetFlag:
		store.SetFlag(eff.Key, eff.FlagValue)

	case domain.EffectToggleFlag:
		store.ToggleFlag(eff.Key)

	case domain.EffectContext:
		e.applyContext(eff, store)

	case domain.EffectQuest:
		e.applyQuest(eff, store)

	default:
		e.logger.Warn("ignoring unknown effect", "effect", eff.Raw())
	}
}

func (e *Engine) applyContext(eff domain.Effect, store *gamestate.Store) {
	switch eff.Op {
	case domain.ContextSet:
		if err := store.SetContext(eff.Key, eff.Value); err != nil {
			e.logger.Warn("context write ignored", "path", eff.Key, "err", err)
		}

	case domain.ContextAdd, domain.ContextSubtract:
		delta, ok := coerceNumber(eff.Value)
		if !ok {
			e.logger.Warn("non-numeric accumulate ignored", "path", eff.Key, "value", eff.Value)
			return
		}
		if eff.Op == domain.ContextSubtract {
			delta = -delta
		}
		if _, err := store.AddContext(eff.Key, delta); err != nil {
			e.logger.Warn("context accumulate ignored", "path", eff.Key, "err", err)
		}

	default:
		e.logger.Warn("ignoring unknown context operation", "op", eff.Op, "path", eff.Key)
	}
}

func (e *Engine) applyQuest(eff domain.Effect, store *gamestate.Store) {
	switch eff.Op {
	case domain.QuestOpStart:
		store.SetQuestStatus(eff.Key, domain.QuestActive)
	case domain.QuestOpComplete:
		store.SetQuestStatus(eff.Key, domain.QuestCompleted)
	case domain.QuestOpFail:
		store.SetQuestStatus(eff.Key, domain.QuestFailed)
	default:
		e.logger.Warn("ignoring unknown quest operation", "op", eff.Op, "quest", eff.Key)
	}
}

// applyEffects runs a list of effects against the store and emits one
// effect event per applied mutation.
func (e *Engine) applyEffects(ctx context.Context, state *domain.SessionState, nodeID string, effects []domain.Effect, store *gamestate.Store) {
	for _, eff := range effects {
		e.Apply(eff, store)
		if eff.Valid() {
			e.emitEffect(ctx, state, nodeID, eff)
		}
	}
}
