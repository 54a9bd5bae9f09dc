// Package runtime implements the conversation traversal core: condition
// evaluation, effect application and the session state machine. The
// engine holds no session data: every operation takes the session state
// and the game store by reference, so adapters can persist state
// wherever they like.
package runtime

import (
	"log/slog"

	"github.com/mojomast/arbor/internal/logging"
	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/ports"
)

// DefaultAutoAdvanceBudget bounds the number of automatic transitions a
// single Enter or Choose call may perform. Exceeding it indicates an
// authoring cycle and surfaces as domain.AutoAdvanceError.
const DefaultAutoAdvanceBudget = 32

// Engine is the core traversal runner.
type Engine struct {
	loader ports.TreeLoader
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	budget int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithAutoAdvanceBudget overrides the per-call auto-advance hop budget.
func WithAutoAdvanceBudget(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.budget = n
		}
	}
}

// NewEngine creates a traversal engine bound to a tree loader.
func NewEngine(loader ports.TreeLoader, opts ...EngineOption) *Engine {
	e := &Engine{
		loader: loader,
		logger: logging.NewNop(),
		budget: DefaultAutoAdvanceBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tree resolves a dialogue tree through the loader.
func (e *Engine) Tree(id string) (*domain.DialogTree, error) {
	return e.loader.GetTree(id)
}

// Loader returns the underlying tree loader.
func (e *Engine) Loader() ports.TreeLoader {
	return e.loader
}
