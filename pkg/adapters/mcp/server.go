package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/equaio"
	"github.com/aretw0/equaio/internal/logging"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/ports"
	"github.com/aretw0/equaio/pkg/ruleset"
	"github.com/aretw0/equaio/pkg/runner"
	"github.com/aretw0/equaio/pkg/session"
	"github.com/aretw0/equaio/pkg/task"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const rulesURI = "equaio://rulesets/algebra"

// Server exposes stored derivations as MCP tools.
type Server struct {
	sessions  *session.Manager
	loader    ports.RuleSetLoader
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLoader sets the loader for rule sets named by create_session scripts
// and list_rules.
func WithLoader(loader ports.RuleSetLoader) Option {
	return func(s *Server) {
		s.loader = loader
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("equaio-mcp", strings.TrimSpace(equaio.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Start a new derivation. The optional script (YAML or JSON) declares variables, rule sets, rules and initial steps."),
		mcp.WithString("script", mcp.Description("Derivation script, e.g. {\"rulesets\": [\"algebra\"], \"steps\": [{\"op\": \"set_current\", \"text\": \"x + 3 = 5\"}]}")),
	), s.handleCreateSession)

	s.mcpServer.AddTool(mcp.NewTool("run_command",
		mcp.WithDescription("Apply one operation to a derivation. Give either a command line such as 'arith_both_sides - 3' or a JSON command object."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by create_session")),
		mcp.WithString("line", mcp.Description("Command line: op followed by positional or key=value arguments")),
		mcp.WithString("command", mcp.Description("JSON command object, e.g. {\"op\": \"apply_rule\", \"rule\": \"algebra/add_zero\"}")),
	), s.handleRunCommand)

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Show the history, rules, target, current statement and error log of a derivation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleGetState)

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List stored derivation sessions."),
	), s.handleListSessions)

	s.mcpServer.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a stored derivation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleDeleteSession)

	s.mcpServer.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the rules of a rule set. Defaults to the built-in algebra set."),
		mcp.WithString("ruleset", mcp.Description("Rule set name")),
	), s.handleListRules)
}

func (s *Server) handleCreateSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	script := &runner.Script{}
	if text := req.GetString("script", ""); strings.TrimSpace(text) != "" {
		var err error
		if script, err = runner.ParseScript([]byte(text)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	id, err := s.sessions.CreateWith(ctx, func(opts ...task.Option) (*task.Task, error) {
		t, err := script.NewTask(s.loader, opts...)
		if err != nil {
			return nil, err
		}
		return t, script.Run(t)
	})
	if err != nil {
		s.logger.Warn("MCP create_session failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("create failed: %v", err)), nil
	}
	state, err := s.dump(ctx, id)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("session_id: %s\n\n%s", id, state)), nil
}

func (s *Server) handleRunCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	cmd, err := commandFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		execErr error
		state   strings.Builder
	)
	err = s.sessions.Do(ctx, id, func(t *task.Task) error {
		execErr = runner.Execute(t, cmd)
		return t.DumpState(&state)
	})
	if err != nil {
		return s.sessionError(id, err)
	}
	if execErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v\n\n%s", cmd.Op, execErr, state.String())), nil
	}
	return mcp.NewToolResultText(state.String()), nil
}

// commandFrom reads the command from the line or command argument.
func commandFrom(req mcp.CallToolRequest) (runner.Command, error) {
	line := req.GetString("line", "")
	raw := req.GetString("command", "")
	switch {
	case line != "" && raw != "":
		return runner.Command{}, errors.New("give either 'line' or 'command', not both")
	case line != "":
		clean, err := runner.SanitizeInput(line)
		if err != nil {
			return runner.Command{}, fmt.Errorf("input rejected: %w", err)
		}
		return runner.ParseLine(clean)
	case raw != "":
		clean, err := runner.SanitizeInput(raw)
		if err != nil {
			return runner.Command{}, fmt.Errorf("input rejected: %w", err)
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(clean), &m); err != nil {
			return runner.Command{}, fmt.Errorf("invalid command: %w", err)
		}
		return runner.DecodeCommand(m)
	}
	return runner.Command{}, errors.New("'line' or 'command' is required")
}

func (s *Server) handleGetState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	state, err := s.dump(ctx, id)
	if err != nil {
		return s.sessionError(id, err)
	}
	return mcp.NewToolResultText(state), nil
}

func (s *Server) handleListSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText("No sessions."), nil
	}
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

func (s *Server) handleDeleteSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText("deleted " + id), nil
}

func (s *Server) handleListRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	set := ruleset.Builtin()
	if name := req.GetString("ruleset", ""); name != "" && name != set.Name {
		if s.loader == nil {
			return mcp.NewToolResultError(fmt.Sprintf("rule set %s: no loader configured", name)), nil
		}
		var err error
		if set, err = ruleset.Load(s.loader, name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(formatRules(set)), nil
}

func formatRules(set *ruleset.RuleSet) string {
	var sb strings.Builder
	for _, r := range set.Rules {
		fmt.Fprintf(&sb, "%s: %s", r.ID, r.Expression)
		if r.Label != "" {
			fmt.Fprintf(&sb, " (%s)", r.Label)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (s *Server) dump(ctx context.Context, id string) (string, error) {
	var sb strings.Builder
	err := s.sessions.View(ctx, id, func(t *task.Task) error {
		return t.DumpState(&sb)
	})
	return sb.String(), err
}

func (s *Server) sessionError(id string, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %s not found", id)), nil
	}
	s.logger.Error("MCP session access failed", "session_id", id, "error", err)
	return nil, err
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(rulesURI, "Built-in algebra rules",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		set := ruleset.Builtin()
		rules := make(map[string]string, len(set.Rules))
		for _, r := range set.Rules {
			rules[r.ID] = r.Expression.String()
		}
		jsonBytes, err := json.Marshal(rules)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      rulesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
