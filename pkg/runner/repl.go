package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/equaio/internal/logging"
	"github.com/aretw0/equaio/pkg/task"
)

// ContentRenderer transforms state dumps before they are written, e.g.
// markdown to ANSI.
type ContentRenderer func(string) (string, error)

// AfterFunc runs after every command that changed or tried to change the
// task, typically to persist it.
type AfterFunc func(ctx context.Context, t *task.Task) error

// REPL reads commands line by line and executes them against a task.
//
// In text mode a line is parsed with ParseLine and the reply is a short
// status line. The words "state", "help" and "quit" (or "exit") are handled
// by the REPL itself. In JSON mode every line is a JSON Command object and
// every reply is one JSON Reply line.
type REPL struct {
	Input    io.Reader
	Output   io.Writer
	Prompt   string
	JSON     bool
	Renderer ContentRenderer
	After    AfterFunc
	Logger   *slog.Logger
}

// Option configures a REPL.
type Option func(*REPL)

// WithPrompt shows prompt before each line. Empty disables it.
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.Prompt = prompt
	}
}

// WithJSON switches to JSON-Lines mode.
func WithJSON(enabled bool) Option {
	return func(r *REPL) {
		r.JSON = enabled
	}
}

// WithRenderer configures the renderer used for state dumps.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *REPL) {
		r.Renderer = renderer
	}
}

// WithAfter registers the hook run after each executed command.
func WithAfter(fn AfterFunc) Option {
	return func(r *REPL) {
		r.After = fn
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *REPL) {
		r.Logger = logger
	}
}

// NewREPL creates a REPL on in and out.
func NewREPL(in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{Input: in, Output: out}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Reply is the JSON-mode answer to one command.
type Reply struct {
	OK            bool   `json:"ok"`
	Error         string `json:"error,omitempty"`
	Current       string `json:"current,omitempty"`
	TargetReached bool   `json:"target_reached,omitempty"`
}

var errQuit = errors.New("quit")

// Run processes input until EOF, quit, or ctx is cancelled. Failed
// operations are reported and the loop goes on; only I/O and After errors
// end it.
func (r *REPL) Run(ctx context.Context, t *task.Task) error {
	scanner := bufio.NewScanner(r.Input)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.prompt()
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}

		line, err := SanitizeInput(scanner.Text())
		if err != nil {
			r.reportError(err)
			continue
		}

		var handled error
		if r.JSON {
			handled = r.handleJSON(ctx, t, line)
		} else {
			handled = r.handleText(ctx, t, line)
		}
		if errors.Is(handled, errQuit) {
			return nil
		}
		if handled != nil {
			return handled
		}
	}
}

func (r *REPL) prompt() {
	if r.Prompt != "" && !r.JSON {
		fmt.Fprint(r.Output, r.Prompt)
	}
}

func (r *REPL) handleText(ctx context.Context, t *task.Task, line string) error {
	switch strings.TrimSpace(line) {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintf(r.Output, "commands: %s\nalso: state, help, quit\n", strings.Join(Ops(), ", "))
		return nil
	case "state":
		return r.printState(t)
	}

	cmd, err := ParseLine(line)
	if errors.Is(err, ErrEmptyLine) {
		return nil
	}
	if err != nil {
		r.reportError(err)
		return nil
	}

	if err := Execute(t, cmd); err != nil {
		r.Logger.Debug("command failed", "op", cmd.Op, "err", err)
		r.reportError(err)
	} else if cur, ok := t.Current(); ok {
		fmt.Fprintf(r.Output, "%s\n", cur)
		if t.TargetReached() {
			fmt.Fprintln(r.Output, "target reached")
		}
	} else {
		fmt.Fprintln(r.Output, "ok")
	}
	return r.after(ctx, t)
}

func (r *REPL) handleJSON(ctx context.Context, t *task.Task, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	enc := json.NewEncoder(r.Output)

	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		return enc.Encode(Reply{Error: fmt.Sprintf("invalid json: %v", err)})
	}
	cmd, err := DecodeCommand(m)
	if err != nil {
		return enc.Encode(Reply{Error: err.Error()})
	}

	reply := Reply{OK: true}
	if err := Execute(t, cmd); err != nil {
		reply = Reply{Error: err.Error()}
	}
	if cur, ok := t.Current(); ok {
		reply.Current = cur.String()
	}
	reply.TargetReached = t.TargetReached()
	if err := enc.Encode(reply); err != nil {
		return err
	}
	return r.after(ctx, t)
}

func (r *REPL) after(ctx context.Context, t *task.Task) error {
	if r.After == nil {
		return nil
	}
	return r.After(ctx, t)
}

func (r *REPL) reportError(err error) {
	fmt.Fprintf(r.Output, "error: %v\n", err)
}

func (r *REPL) printState(t *task.Task) error {
	var buf bytes.Buffer
	if err := t.DumpState(&buf); err != nil {
		return err
	}
	out := buf.String()
	if r.Renderer != nil {
		rendered, err := r.Renderer("```\n" + out + "```\n")
		if err == nil {
			out = rendered
		} else {
			r.Logger.Warn("render failed, printing plain state", "err", err)
		}
	}
	_, err := io.WriteString(r.Output, out)
	return err
}
