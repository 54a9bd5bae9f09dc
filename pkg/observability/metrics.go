// Package observability bridges engine lifecycle events to Prometheus
// metrics. The engine itself stays free of metrics dependencies; the
// bridge subscribes through LifecycleHooks like any other listener.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mojomast/arbor/pkg/domain"
)

// Metrics holds the conversation counters.
type Metrics struct {
	nodesEntered  *prometheus.CounterVec
	choicesMade   *prometheus.CounterVec
	effectsRun    *prometheus.CounterVec
	sessionsEnded *prometheus.CounterVec
}

// NewMetrics creates and registers the conversation metrics on the
// given registerer. Pass prometheus.DefaultRegisterer for the usual
// process-global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodesEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_nodes_entered_total",
			Help: "Dialogue nodes entered, by tree and entry mode.",
		}, []string{"tree", "auto"}),
		choicesMade: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_choices_made_total",
			Help: "Player choices applied, by tree.",
		}, []string{"tree"}),
		effectsRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_effects_applied_total",
			Help: "State effects applied, by tree and effect kind.",
		}, []string{"tree", "kind"}),
		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_sessions_ended_total",
			Help: "Sessions reaching a terminal node, by tree.",
		}, []string{"tree"}),
	}
	reg.MustRegister(m.nodesEntered, m.choicesMade, m.effectsRun, m.sessionsEnded)
	return m
}

// Hooks returns lifecycle hooks that feed the counters. Merge these
// with any caller-supplied hooks before handing them to the engine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) {
			auto := "manual"
			if ev.Auto {
				auto = "auto"
			}
			m.nodesEntered.WithLabelValues(ev.TreeID, auto).Inc()
		},
		OnChoice: func(_ context.Context, ev *domain.ChoiceEvent) {
			m.choicesMade.WithLabelValues(ev.TreeID).Inc()
		},
		OnEffect: func(_ context.Context, ev *domain.EffectEvent) {
			m.effectsRun.WithLabelValues(ev.TreeID, string(ev.Kind)).Inc()
		},
		OnSessionEnd: func(_ context.Context, ev *domain.SessionEvent) {
			m.sessionsEnded.WithLabelValues(ev.TreeID).Inc()
		},
	}
}

// MergeHooks fans each event out to every non-nil hook set, in order.
func MergeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, ev *domain.NodeEvent) {
			for _, s := range sets {
				if s.OnNodeEnter != nil {
					s.OnNodeEnter(ctx, ev)
				}
			}
		},
		OnNodeLeave: func(ctx context.Context, ev *domain.NodeEvent) {
			for _, s := range sets {
				if s.OnNodeLeave != nil {
					s.OnNodeLeave(ctx, ev)
				}
			}
		},
		OnChoice: func(ctx context.Context, ev *domain.ChoiceEvent) {
			for _, s := range sets {
				if s.OnChoice != nil {
					s.OnChoice(ctx, ev)
				}
			}
		},
		OnEffect: func(ctx context.Context, ev *domain.EffectEvent) {
			for _, s := range sets {
				if s.OnEffect != nil {
					s.OnEffect(ctx, ev)
				}
			}
		},
		OnSessionEnd: func(ctx context.Context, ev *domain.SessionEvent) {
			for _, s := range sets {
				if s.OnSessionEnd != nil {
					s.OnSessionEnd(ctx, ev)
				}
			}
		},
	}
}
