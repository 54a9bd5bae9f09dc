// Package mcp exposes the conversation engine as a Model Context
// Protocol server so AI agents can drive dialogue trees as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/gamestate"
	"github.com/mojomast/arbor/pkg/session"
)

// SessionView is the unified tool response: the persisted session plus
// the current presentation.
type SessionView struct {
	Session *domain.SessionState `json:"session" jsonschema_description:"The persisted session state"`
	View    *domain.Presentation `json:"view,omitempty" jsonschema_description:"The current node presentation"`
}

// Engine defines the conversation core the MCP server drives.
type Engine interface {
	Tree(id string) (*domain.DialogTree, error)
	Trees() ([]string, error)
	Start(ctx context.Context, state *domain.SessionState, store *gamestate.Store) (*domain.Presentation, error)
	Choose(ctx context.Context, state *domain.SessionState, store *gamestate.Store, index int) (*domain.Presentation, error)
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(engine Engine, sessions *session.Manager, version string) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("arbor-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_conversation",
		mcp.WithDescription("Start a new conversation on a dialogue tree. Returns the first node and its choices."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("The ID of the dialogue tree to play")),
		mcp.WithString("session_id", mcp.Description("Session ID to use (optional, generated when omitted)")),
		mcp.WithString("variables", mcp.Description("JSON object of initial context values (optional)")),
		mcp.WithOutputSchema[SessionView](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	chooseTool := mcp.NewTool("choose",
		mcp.WithDescription("Pick one of the currently offered choices by its index and advance the conversation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to advance")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based index into the offered choice list")),
		mcp.WithOutputSchema[SessionView](),
	)
	s.mcpServer.AddTool(chooseTool, mcp.NewStructuredToolHandler(s.handleChoose))

	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Inspect a session's current state without advancing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to inspect")),
		mcp.WithOutputSchema[SessionView](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("list_trees",
		mcp.WithDescription("List the IDs of all loadable dialogue trees."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.engine.Trees()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing trees failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the full definition of a dialogue tree for introspection."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("The tree to fetch")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		treeID := request.GetString("tree_id", "")
		tree, err := s.engine.Tree(treeID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("tree lookup failed: %v", err)), nil
		}
		jsonBytes, err := tree.ToJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("tree encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	treeID, _ := args["tree_id"].(string)
	if treeID == "" {
		return SessionView{}, fmt.Errorf("tree_id is required")
	}

	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var variables map[string]any
	if varsStr, ok := args["variables"].(string); ok && varsStr != "" {
		if err := json.Unmarshal([]byte(varsStr), &variables); err != nil {
			return SessionView{}, fmt.Errorf("invalid variables JSON: %w", err)
		}
	}

	state := domain.NewSessionState(sessionID, treeID)
	store := gamestate.NewStore()
	store.Seed(variables)

	view, err := s.engine.Start(ctx, state, store)
	if err != nil {
		return SessionView{}, fmt.Errorf("start failed: %w", err)
	}

	state.Game = store.Snapshot()
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return SessionView{}, fmt.Errorf("save failed: %w", err)
	}

	return SessionView{Session: state, View: view}, nil
}

func (s *Server) handleChoose(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return SessionView{}, fmt.Errorf("session_id is required")
	}
	indexRaw, ok := args["index"].(float64)
	if !ok {
		return SessionView{}, fmt.Errorf("index is required")
	}
	index := int(indexRaw)

	var out SessionView
	err := s.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := s.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}

		store := gamestate.FromSnapshot(state.Game)
		view, err := s.engine.Choose(ctx, state, store, index)
		if err != nil {
			return err
		}

		state.Game = store.Snapshot()
		if err := s.sessions.Store().Save(ctx, sessionID, state); err != nil {
			return err
		}
		out = SessionView{Session: state, View: view}
		return nil
	})
	if err != nil {
		return SessionView{}, fmt.Errorf("choose failed: %w", err)
	}
	return out, nil
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return SessionView{}, fmt.Errorf("session_id is required")
	}
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return SessionView{}, fmt.Errorf("load failed: %w", err)
	}
	return SessionView{Session: state}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("arbor://trees", "Available Dialogue Trees",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.Trees()
		if err != nil {
			return nil, fmt.Errorf("failed to list trees: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://trees",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
