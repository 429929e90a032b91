package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/equaio"
	"github.com/aretw0/equaio/internal/logging"
	"github.com/aretw0/equaio/pkg/display"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/ports"
	"github.com/aretw0/equaio/pkg/runner"
	"github.com/aretw0/equaio/pkg/session"
	"github.com/aretw0/equaio/pkg/task"
	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds request bodies. Scripts are the largest payload.
const maxBodySize = 1 << 20

// Server exposes stored derivations over REST.
type Server struct {
	Sessions *session.Manager
	Loader   ports.RuleSetLoader
	Streams  *StreamManager
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLoader sets the loader used to resolve rule sets named by new sessions.
func WithLoader(loader ports.RuleSetLoader) Option {
	return func(s *Server) {
		s.Loader = loader
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// CommandResponse is the reply to POST /sessions/{id}/commands.
type CommandResponse struct {
	OK       bool             `json:"ok"`
	Error    string           `json:"error,omitempty"`
	Snapshot *domain.Snapshot `json:"snapshot"`
}

// CreateResponse is the reply to POST /sessions.
type CreateResponse struct {
	ID       string           `json:"id"`
	Snapshot *domain.Snapshot `json:"snapshot"`
}

// RenderResponse carries the display layout of the current and target
// statements. Unset statements are omitted.
type RenderResponse struct {
	Current *display.Block `json:"current,omitempty"`
	Target  *display.Block `json:"target,omitempty"`
}

// NewServer creates a Server over the session manager.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates the HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/commands", s.RunCommand)
			r.Get("/render", s.Render)
			r.Get("/state", s.GetState)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSession handles POST /sessions. The optional body is a derivation
// script (JSON or YAML); its steps run before the session is stored.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	script := &runner.Script{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if script, err = runner.ParseScript(data); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			s.logger.Warn("CreateSession: invalid script", "error", err)
			return
		}
	}

	id, err := s.Sessions.CreateWith(r.Context(), func(opts ...task.Option) (*task.Task, error) {
		t, err := script.NewTask(s.Loader, opts...)
		if err != nil {
			return nil, err
		}
		return t, script.Run(t)
	})
	if err != nil {
		status := http.StatusInternalServerError
		var stepErr *runner.StepError
		if errors.As(err, &stepErr) {
			status = http.StatusUnprocessableEntity
		} else if errors.Is(err, domain.ErrParse) || errors.Is(err, domain.ErrRuleNotDefined) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		s.logger.Warn("CreateSession failed", "error", err)
		return
	}

	snapshot, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "CreateSession", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, CreateResponse{ID: id, Snapshot: snapshot})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunCommand handles POST /sessions/{id}/commands. A rejected operation
// still stores the session, since the diagnostic log changed, and answers
// 422 with the message.
func (s *Server) RunCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var raw map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("RunCommand: invalid request body", "error", err)
		return
	}
	cmd, err := runner.DecodeCommand(raw)
	if err == nil {
		err = sanitizeCommand(&cmd)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		s.logger.Warn("RunCommand: command rejected", "error", err, "session_id", id)
		return
	}

	var (
		before, after *domain.Snapshot
		execErr       error
	)
	err = s.Sessions.Do(r.Context(), id, func(t *task.Task) error {
		before = t.Snapshot()
		execErr = runner.Execute(t, cmd)
		after = t.Snapshot()
		return nil
	})
	if err != nil {
		s.fail(w, "RunCommand", err)
		return
	}

	if diff := domain.Diff(before, after); diff != nil {
		if data, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(data))
		}
	}

	resp := CommandResponse{OK: execErr == nil, Snapshot: after}
	status := http.StatusOK
	if execErr != nil {
		resp.Error = execErr.Error()
		status = http.StatusUnprocessableEntity
		if errors.Is(execErr, domain.ErrUnknownCommand) || errors.Is(execErr, runner.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
	}
	s.writeJSON(w, status, resp)
}

// Render handles GET /sessions/{id}/render.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	var resp RenderResponse
	err := s.Sessions.View(r.Context(), chi.URLParam(r, "id"), func(t *task.Task) error {
		if cur, ok := t.Current(); ok {
			b := display.Render(cur)
			resp.Current = &b
		}
		if target, ok := t.Target(); ok {
			b := display.Render(target)
			resp.Target = &b
		}
		return nil
	})
	if err != nil {
		s.fail(w, "Render", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetState handles GET /sessions/{id}/state with the plain text state dump.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	var sb strings.Builder
	err := s.Sessions.View(r.Context(), chi.URLParam(r, "id"), func(t *task.Task) error {
		return t.DumpState(&sb)
	})
	if err != nil {
		s.fail(w, "GetState", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, sb.String())
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "equaio-http",
		"version": strings.TrimSpace(equaio.Version),
		"ops":     runner.Ops(),
	})
}

func (s *Server) fail(w http.ResponseWriter, handler string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("%s error: %v", handler, err), http.StatusInternalServerError)
	s.logger.Error(handler+" failed", "error", err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// sanitizeCommand applies the input policy to every free-text field.
func sanitizeCommand(cmd *runner.Command) error {
	for _, field := range []*string{&cmd.Text, &cmd.Function, &cmd.Value, &cmd.Left, &cmd.Right, &cmd.Label} {
		if *field == "" {
			continue
		}
		clean, err := runner.SanitizeInput(*field)
		if err != nil {
			return fmt.Errorf("%w: %v", runner.ErrInvalidArgument, err)
		}
		*field = clean
	}
	return nil
}
