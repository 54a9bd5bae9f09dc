package runtime

import (
	"context"
	"time"

	"github.com/mojomast/arbor/pkg/domain"
)

func (e *Engine) eventBase(state *domain.SessionState, typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      typ,
		SessionID: state.ID,
		TreeID:    state.TreeID,
	}
}

func (e *Engine) emitNodeEnter(ctx context.Context, state *domain.SessionState, node *domain.DialogNode, auto bool) {
	e.logger.Debug("node enter", "node", node.ID, "auto", auto)
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: e.eventBase(state, domain.EventNodeEnter),
		NodeID:    node.ID,
		Speaker:   node.Speaker,
		Auto:      auto,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, state *domain.SessionState, node *domain.DialogNode, auto bool) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: e.eventBase(state, domain.EventNodeLeave),
		NodeID:    node.ID,
		Speaker:   node.Speaker,
		Auto:      auto,
	})
}

func (e *Engine) emitChoice(ctx context.Context, state *domain.SessionState, nodeID string, choice domain.DialogChoice) {
	e.logger.Debug("choice taken", "node", nodeID, "goto", choice.Goto, "once", choice.Once)
	if e.hooks.OnChoice == nil {
		return
	}
	e.hooks.OnChoice(ctx, &domain.ChoiceEvent{
		EventBase: e.eventBase(state, domain.EventChoice),
		NodeID:    nodeID,
		Text:      choice.Text,
		Goto:      choice.Goto,
		Once:      choice.Once,
	})
}

func (e *Engine) emitEffect(ctx context.Context, state *domain.SessionState, nodeID string, eff domain.Effect) {
	if e.hooks.OnEffect == nil {
		return
	}
	e.hooks.OnEffect(ctx, &domain.EffectEvent{
		EventBase: e.eventBase(state, domain.EventEffect),
		NodeID:    nodeID,
		Kind:      eff.Kind,
		Key:       eff.Key,
	})
}

func (e *Engine) emitSessionEnd(ctx context.Context, state *domain.SessionState, reason string) {
	e.logger.Debug("session ended", "status", state.Status, "reason", reason)
	if e.hooks.OnSessionEnd == nil {
		return
	}
	e.hooks.OnSessionEnd(ctx, &domain.SessionEvent{
		EventBase: e.eventBase(state, domain.EventSessionEnd),
		Status:    state.Status,
		Reason:    reason,
	})
}
