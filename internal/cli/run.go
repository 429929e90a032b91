package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/runner"
	"github.com/aretw0/equaio/pkg/task"
)

// RunOptions contains the configuration for the run command.
type RunOptions struct {
	ScriptPath string
	SessionID  string // persist the derivation under this ID
	Fresh      bool   // discard a stored derivation instead of resuming it
	Format     Format
}

// RunScript runs a derivation script and prints the final state. With a
// session ID the derivation is resumed from the store when it exists (the
// script's steps continue it) and is stored afterwards, even when a step
// failed. The failing step's error is returned.
func RunScript(ctx context.Context, opts RunOptions, b *Backend, out io.Writer, logger *slog.Logger) error {
	script, err := runner.LoadScript(opts.ScriptPath)
	if err != nil {
		return err
	}

	build := func() (*task.Task, error) {
		return script.NewTask(b.Rules, task.WithID(opts.SessionID), task.WithLogger(logger))
	}

	if opts.SessionID == "" {
		t, err := build()
		if err != nil {
			return err
		}
		runErr := script.Run(t)
		if err := PrintState(out, t, opts.Format); err != nil {
			return err
		}
		return runErr
	}

	mgr := b.Manager(logger, domain.LifecycleHooks{})
	var runErr error
	err = mgr.WithLock(ctx, opts.SessionID, func(ctx context.Context) error {
		t, resumed, err := loadOrBuild(ctx, b, opts, build, logger)
		if err != nil {
			return err
		}
		if resumed {
			logger.Info("Session Resumed", "session_id", opts.SessionID, "history_len", len(t.History()))
		} else {
			logger.Info("Session Created", "session_id", opts.SessionID)
		}

		runErr = script.Run(t)
		if err := b.Store.Save(ctx, opts.SessionID, t.Snapshot()); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return PrintState(out, t, opts.Format)
	})
	if err != nil {
		return err
	}
	return runErr
}

func loadOrBuild(ctx context.Context, b *Backend, opts RunOptions, build func() (*task.Task, error), logger *slog.Logger) (*task.Task, bool, error) {
	if opts.Fresh {
		t, err := build()
		return t, false, err
	}
	snapshot, err := b.Store.Load(ctx, opts.SessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		t, err := build()
		return t, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}
	t, err := task.Restore(snapshot, task.WithLogger(logger))
	return t, true, err
}
