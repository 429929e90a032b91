package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/equaio"
	"github.com/aretw0/equaio/internal/presentation/tui"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/runner"
	"github.com/aretw0/equaio/pkg/task"
)

// REPLOptions contains the configuration for the repl command.
type REPLOptions struct {
	ScriptPath  string // optional script run before the first prompt
	SessionID   string // persist after every command under this ID
	Fresh       bool
	JSON        bool
	Interactive bool // stdin is a terminal: banner, prompt and markdown
}

// RunREPL starts an interactive derivation. Without a script the built-in
// algebra rules are installed.
func RunREPL(ctx context.Context, opts REPLOptions, b *Backend, in io.Reader, out io.Writer, logger *slog.Logger) error {
	script := &runner.Script{Rulesets: []string{"algebra"}}
	if opts.ScriptPath != "" {
		var err error
		if script, err = runner.LoadScript(opts.ScriptPath); err != nil {
			return err
		}
	}
	build := func() (*task.Task, error) {
		return script.NewTask(b.Rules, task.WithID(opts.SessionID), task.WithLogger(logger))
	}

	var (
		t       *task.Task
		resumed bool
		err     error
	)
	if opts.SessionID == "" {
		t, err = build()
	} else {
		t, resumed, err = loadOrBuild(ctx, b, RunOptions{SessionID: opts.SessionID, Fresh: opts.Fresh}, build, logger)
	}
	if err != nil {
		return err
	}
	if !resumed {
		if err := script.Run(t); err != nil {
			return err
		}
	}

	replOpts := []runner.Option{
		runner.WithJSON(opts.JSON),
		runner.WithLogger(logger),
	}
	if opts.Interactive && !opts.JSON {
		tui.PrintBanner(out, equaio.Version)
		if resumed {
			fmt.Fprintf(out, ">>> Resuming session '%s' at step %d.\n", opts.SessionID, len(t.History()))
		}
		replOpts = append(replOpts, runner.WithPrompt("> "))
		if render, err := tui.NewRenderer(); err == nil {
			replOpts = append(replOpts, runner.WithRenderer(render))
		}
	}
	if opts.SessionID != "" {
		mgr := b.Manager(logger, domain.LifecycleHooks{})
		replOpts = append(replOpts, runner.WithAfter(func(ctx context.Context, t *task.Task) error {
			return mgr.Save(ctx, opts.SessionID, t.Snapshot())
		}))
		if err := mgr.Save(ctx, opts.SessionID, t.Snapshot()); err != nil {
			return err
		}
	}

	return runner.NewREPL(in, out, replOpts...).Run(ctx, t)
}
