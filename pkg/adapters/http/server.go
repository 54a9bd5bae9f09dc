// Package http exposes the conversation engine as a stateless JSON API.
// Session state lives in a SessionStore behind a session.Manager, so
// any number of replicas can serve the same conversations.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mojomast/arbor/internal/logging"
	"github.com/mojomast/arbor/internal/presentation/graph"
	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/gamestate"
	"github.com/mojomast/arbor/pkg/session"
)

// Engine defines the conversation core the server drives.
type Engine interface {
	Tree(id string) (*domain.DialogTree, error)
	Trees() ([]string, error)
	Validate(id string) ([]string, error)
	Start(ctx context.Context, state *domain.SessionState, store *gamestate.Store) (*domain.Presentation, error)
	Choose(ctx context.Context, state *domain.SessionState, store *gamestate.Store, index int) (*domain.Presentation, error)
}

// Server handles the HTTP routes.
type Server struct {
	engine   Engine
	sessions *session.Manager
	logger   *slog.Logger
	metrics  http.Handler
	version  string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts a handler at GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version string reported by GET /version.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler builds the HTTP handler for the engine.
func NewHandler(engine Engine, sessions *session.Manager, opts ...ServerOption) http.Handler {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/version", s.versionInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/trees", s.listTrees)
	r.Get("/trees/{treeID}", s.getTree)
	r.Get("/trees/{treeID}/validate", s.validateTree)
	r.Get("/trees/{treeID}/graph", s.getGraph)

	r.Post("/sessions", s.createSession)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/{sessionID}", s.getSession)
	r.Post("/sessions/{sessionID}/choose", s.choose)
	r.Delete("/sessions/{sessionID}", s.deleteSession)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) versionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": s.version,
	})
}

func (s *Server) listTrees(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Trees()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trees": ids})
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.engine.Tree(chi.URLParam(r, "treeID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) validateTree(w http.ResponseWriter, r *http.Request) {
	warnings, err := s.engine.Validate(chi.URLParam(r, "treeID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    len(warnings) == 0,
		"warnings": warnings,
	})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	tree, err := s.engine.Tree(chi.URLParam(r, "treeID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var overlay *graph.Overlay
	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		state, err := s.sessions.Load(r.Context(), sessionID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		overlay = &graph.Overlay{
			VisitedNodes: state.History,
			CurrentNode:  state.CurrentNodeID,
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(tree, overlay)))
}

type createSessionRequest struct {
	TreeID    string         `json:"tree_id"`
	SessionID string         `json:"session_id,omitempty"`
	Variables map[string]any `json:"variables,omitempty"`
}

type sessionResponse struct {
	Session *domain.SessionState `json:"session"`
	View    *domain.Presentation `json:"view"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TreeID == "" {
		http.Error(w, "tree_id is required", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state := domain.NewSessionState(sessionID, req.TreeID)
	store := gamestate.NewStore()
	store.Seed(req.Variables)

	view, err := s.engine.Start(r.Context(), state, store)
	if err != nil && !isSessionFault(err) {
		s.writeError(w, r, err)
		return
	}

	state.Game = store.Snapshot()
	if saveErr := s.sessions.Save(r.Context(), sessionID, state); saveErr != nil {
		s.writeError(w, r, saveErr)
		return
	}

	status := http.StatusCreated
	if err != nil {
		// Authoring faults (auto-advance cycles) are persisted so the
		// broken session is inspectable, then surfaced to the client.
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, sessionResponse{Session: state, View: view})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: state})
}

type chooseRequest struct {
	Index int `json:"index"`
}

func (s *Server) choose(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req chooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var (
		state *domain.SessionState
		view  *domain.Presentation
	)
	err := s.sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		var err error
		state, err = s.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}

		store := gamestate.FromSnapshot(state.Game)
		view, err = s.engine.Choose(ctx, state, store, req.Index)
		if err != nil && !isSessionFault(err) {
			return err
		}

		state.Game = store.Snapshot()
		if saveErr := s.sessions.Store().Save(ctx, sessionID, state); saveErr != nil {
			return saveErr
		}
		return err
	})
	if err != nil && !isSessionFault(err) {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, sessionResponse{Session: state, View: view})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// isSessionFault reports errors that describe the session rather than
// the request: the state is still persisted and returned.
func isSessionFault(err error) bool {
	var aae *domain.AutoAdvanceError
	return errors.As(err, &aae)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrTreeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidChoice):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotActive):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
