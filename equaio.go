package equaio

import (
	_ "embed"
	"slices"

	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/ruleset"
	"github.com/aretw0/equaio/pkg/runner"
	"github.com/aretw0/equaio/pkg/task"
)

// Version is the release version, read from the VERSION file.
//
//go:embed VERSION
var Version string

// New returns a derivation over the arithmetic context with the built-in
// algebra rules installed. vars declares extra pattern variables.
func New(vars []string, opts ...task.Option) (*task.Task, error) {
	algebra := ruleset.Builtin()
	ctx := arithmetic.Context(slices.Concat(vars, algebra.Variables)...)
	t := task.New(ctx, opts...)
	if err := algebra.Install(t); err != nil {
		return nil, err
	}
	return t, nil
}

// RunScript loads the derivation script at path, runs it and returns the
// resulting task. On a failing step the task is returned with the error,
// so its state can still be shown.
func RunScript(path string, opts ...task.Option) (*task.Task, error) {
	script, err := runner.LoadScript(path)
	if err != nil {
		return nil, err
	}
	t, err := script.NewTask(nil, opts...)
	if err != nil {
		return nil, err
	}
	return t, script.Run(t)
}
