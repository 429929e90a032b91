package runner_test

import (
	"testing"

	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/runner"
	"github.com/aretw0/equaio/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask() *task.Task {
	return task.New(arithmetic.Context("a", "b", "c"))
}

func current(t *testing.T, tk *task.Task) string {
	t.Helper()
	cur, ok := tk.Current()
	require.True(t, ok)
	return cur.String()
}

func TestExecute_Derivation(t *testing.T) {
	tk := newTask()
	commands := []runner.Command{
		{Op: task.OpSetTarget, Text: "x = 2"},
		{Op: task.OpAddRule, Name: "assoc", Text: "a + b + c = a + (b + c)"},
		{Op: task.OpAddRule, Name: "add_zero", Text: "a + 0 = a"},
		{Op: task.OpSetCurrent, Text: "x + 3 = 5"},
		{Op: task.OpArithBothSides, Operator: "subtract", Value: "3"},
		{Op: task.OpCalculate, Left: "5", Right: "3", Operator: "-"},
		{Op: task.OpSubToAdd},
		{Op: task.OpRemoveAssocParens},
		{Op: task.OpApplyRule, Rule: "assoc"},
		{Op: task.OpCalculateAt, Addr: expr.Address{0, 1}},
		{Op: task.OpApplyRule, Rule: "add_zero", Label: "drop zero"},
	}
	for i, cmd := range commands {
		require.NoError(t, runner.Execute(tk, cmd), "command %d", i)
	}

	assert.Equal(t, "x = 2", current(t, tk))
	assert.True(t, tk.TargetReached())
	history := tk.History()
	assert.Equal(t, "drop zero", history[len(history)-1].Label)
}

func TestExecute_OtherOps(t *testing.T) {
	tk := newTask()
	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpSetTarget, Text: "a + b = c"}))
	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpInitFromTarget}))
	assert.Equal(t, "a + b = a + b", current(t, tk))

	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpSwap, Addr1: expr.Address{1, 0}, Addr2: expr.Address{1, 1}}))
	assert.Equal(t, "a + b = b + a", current(t, tk))

	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpApplyFunction, Function: "y * 2", Var: "y"}))
	assert.Equal(t, "(a + b) * 2 = (b + a) * 2", current(t, tk))

	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpSetCurrent, Text: "x = 6 / 4"}))
	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpSimplifyFraction, Addr: expr.Address{1}}))
	assert.Equal(t, "x = 3 / 2", current(t, tk))

	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpDivToMul}))
	assert.Equal(t, "x = 3 * (/2)", current(t, tk))
	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpMulToDiv}))
	assert.Equal(t, "x = 3 / 2", current(t, tk))

	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpAddRule, Name: "flip", Text: "a / b = b / a"}))
	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpApplyRuleChoice, Rule: "flip", Choice: 0}))
	assert.Equal(t, "x = 2 / 3", current(t, tk))

	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpApplyRuleAt, Rule: "flip", Addr: expr.Address{1}, Label: "flip back"}))
	assert.Equal(t, "x = 3 / 2", current(t, tk))
	err := runner.Execute(tk, runner.Command{Op: task.OpApplyRuleAt, Rule: "flip", Addr: expr.Address{0}})
	assert.ErrorIs(t, err, domain.ErrNoMatch)

	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpArithBothSides, Operator: "*", Value: "2", Label: "double"}))
	history := tk.History()
	assert.Equal(t, "flip back", history[len(history)-2].Label)
	assert.Equal(t, "double", history[len(history)-1].Label)
}

func TestExecute_Failures(t *testing.T) {
	tk := newTask()

	err := runner.Execute(tk, runner.Command{Op: task.OpApplyRule, Rule: "r"})
	assert.ErrorIs(t, err, domain.ErrCurrentNotSet)

	err = runner.Execute(tk, runner.Command{Op: "teleport"})
	assert.ErrorIs(t, err, domain.ErrUnknownCommand)

	require.NoError(t, runner.Execute(tk, runner.Command{Op: task.OpSetCurrent, Text: "x = 1"}))
	err = runner.Execute(tk, runner.Command{Op: task.OpArithBothSides, Operator: "modulo", Value: "2"})
	assert.ErrorIs(t, err, runner.ErrInvalidArgument)
	err = runner.Execute(tk, runner.Command{Op: task.OpCalculate, Left: "1", Right: "2", Operator: "%"})
	assert.ErrorIs(t, err, runner.ErrInvalidArgument)

	var opErr *domain.OperationError
	err = runner.Execute(tk, runner.Command{Op: task.OpApplyRule, Rule: "missing"})
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, task.OpApplyRule, opErr.Op)
	assert.Equal(t, "rule missing is not defined", opErr.Message)

	// Argument errors never reach the task's log.
	assert.Equal(t, []string{"current statement is not set", "rule missing is not defined"}, tk.ErrorMessages())
	assert.Equal(t, "x = 1", current(t, tk))
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := runner.DecodeCommand(map[string]any{
		"op":     "swap",
		"addr1":  "[0,0]",
		"addr2":  []any{0, 1},
		"choice": "2",
		"label":  "reorder",
	})
	require.NoError(t, err)
	assert.Equal(t, runner.Command{
		Op:     "swap",
		Addr1:  expr.Address{0, 0},
		Addr2:  expr.Address{0, 1},
		Choice: 2,
		Label:  "reorder",
	}, cmd)

	cmd, err = runner.DecodeCommand(map[string]any{"op": "calculate_at", "addr": []any{float64(1), float64(0)}})
	require.NoError(t, err)
	assert.Equal(t, expr.Address{1, 0}, cmd.Addr)

	_, err = runner.DecodeCommand(map[string]any{"op": "swap", "bogus": 1})
	assert.ErrorIs(t, err, runner.ErrInvalidArgument)

	_, err = runner.DecodeCommand(map[string]any{"op": "swap", "addr1": "[x]"})
	assert.ErrorIs(t, err, runner.ErrInvalidArgument)
}

func TestOps_AllExecutable(t *testing.T) {
	for _, op := range runner.Ops() {
		err := runner.Execute(newTask(), runner.Command{Op: op})
		assert.NotErrorIs(t, err, domain.ErrUnknownCommand, op)
	}
}
