package arbor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mojomast/arbor/internal/logging"
	"github.com/mojomast/arbor/internal/runtime"
	"github.com/mojomast/arbor/pkg/adapters/file"
	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/gamestate"
	"github.com/mojomast/arbor/pkg/ports"
)

// Engine is the high-level entry point for the arbor library. It wraps
// the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	loader  ports.TreeLoader
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	budget  int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom TreeLoader, bypassing the default
// file-based initialization.
func WithLoader(l ports.TreeLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithAutoAdvanceBudget overrides the automatic transition hop budget.
func WithAutoAdvanceBudget(n int) Option {
	return func(e *Engine) {
		e.budget = n
	}
}

// New initializes a new arbor Engine. By default it loads trees from
// the given path (a directory of tree documents, or a single file).
// If the WithLoader option is provided, treePath may be empty.
func New(treePath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if treePath == "" {
			return nil, fmt.Errorf("treePath is required when no custom loader is provided")
		}
		loader, err := file.NewLoader(treePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load trees: %w", err)
		}
		eng.loader = loader
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.budget > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithAutoAdvanceBudget(eng.budget))
	}

	eng.runtime = runtime.NewEngine(eng.loader, runtimeOpts...)
	return eng, nil
}

// Tree returns the parsed tree with the given id.
func (e *Engine) Tree(id string) (*domain.DialogTree, error) {
	return e.runtime.Tree(id)
}

// Trees lists the ids of all loadable trees.
func (e *Engine) Trees() ([]string, error) {
	return e.loader.ListTrees()
}

// Validate runs structural checks on a tree and returns human-readable
// warnings. An empty slice means the tree is clean.
func (e *Engine) Validate(id string) ([]string, error) {
	tree, err := e.runtime.Tree(id)
	if err != nil {
		return nil, err
	}
	return tree.Validate(), nil
}

// Loader returns the underlying TreeLoader used by the engine.
func (e *Engine) Loader() ports.TreeLoader {
	return e.loader
}

// Start begins traversal of the session's tree at its start node. The
// caller owns both the session state and the game store; the engine
// only mutates them.
func (e *Engine) Start(ctx context.Context, state *domain.SessionState, store *gamestate.Store) (*domain.Presentation, error) {
	return e.runtime.Start(ctx, state, store)
}

// Enter moves the session to the given node, following auto-advance
// chains until a presentable or terminal node is reached.
func (e *Engine) Enter(ctx context.Context, state *domain.SessionState, store *gamestate.Store, nodeID string) (*domain.Presentation, error) {
	return e.runtime.Enter(ctx, state, store, nodeID)
}

// Choose applies the choice at the given index of the last offered
// list and advances the session.
func (e *Engine) Choose(ctx context.Context, state *domain.SessionState, store *gamestate.Store, index int) (*domain.Presentation, error) {
	return e.runtime.Choose(ctx, state, store, index)
}

// Session is a stateful convenience wrapper that owns its session
// state and game store. Use the stateless Engine methods directly when
// state lives in an external store.
type Session struct {
	engine *Engine
	state  *domain.SessionState
	store  *gamestate.Store
}

// NewSession creates a fresh session for the given tree with a
// generated session id and an empty game store.
func (e *Engine) NewSession(treeID string) (*Session, error) {
	if _, err := e.runtime.Tree(treeID); err != nil {
		return nil, err
	}
	return &Session{
		engine: e,
		state:  domain.NewSessionState(uuid.NewString(), treeID),
		store:  gamestate.NewStore(),
	}, nil
}

// ResumeSession wraps previously persisted state and store.
func (e *Engine) ResumeSession(state *domain.SessionState, store *gamestate.Store) *Session {
	return &Session{engine: e, state: state, store: store}
}

// Start begins the conversation at the tree's start node.
func (s *Session) Start(ctx context.Context) (*domain.Presentation, error) {
	return s.engine.Start(ctx, s.state, s.store)
}

// Choose picks the offered choice at index and advances.
func (s *Session) Choose(ctx context.Context, index int) (*domain.Presentation, error) {
	return s.engine.Choose(ctx, s.state, s.store, index)
}

// State returns the session state for inspection or persistence.
func (s *Session) State() *domain.SessionState {
	return s.state
}

// Store returns the game store for inspection or persistence.
func (s *Session) Store() *gamestate.Store {
	return s.store
}
