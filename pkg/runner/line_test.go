package runner_test

import (
	"testing"

	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_Positional(t *testing.T) {
	tests := []struct {
		line string
		want runner.Command
	}{
		{"set_current x + 3 = 5", runner.Command{Op: "set_current", Text: "x + 3 = 5"}},
		{"  set_target   x = 2 ", runner.Command{Op: "set_target", Text: "x = 2"}},
		{"add_rule add_zero X + 0 = X", runner.Command{Op: "add_rule", Name: "add_zero", Text: "X + 0 = X"}},
		{"apply_rule add_zero", runner.Command{Op: "apply_rule", Rule: "add_zero"}},
		{"apply_rule_choice add_zero 1", runner.Command{Op: "apply_rule_choice", Rule: "add_zero", Choice: 1}},
		{"apply_rule_at add_zero [0, 1]", runner.Command{Op: "apply_rule_at", Rule: "add_zero", Addr: expr.Address{0, 1}}},
		{"apply_function X ^ 2 X", runner.Command{Op: "apply_function", Function: "X ^ 2", Var: "X"}},
		{"swap [0,0] [0,1]", runner.Command{Op: "swap", Addr1: expr.Address{0, 0}, Addr2: expr.Address{0, 1}}},
		{"arith_both_sides - 3", runner.Command{Op: "arith_both_sides", Operator: "-", Value: "3"}},
		{"arith_both_sides multiply x + 1", runner.Command{Op: "arith_both_sides", Operator: "multiply", Value: "x + 1"}},
		{"calculate 5 - 3", runner.Command{Op: "calculate", Left: "5", Operator: "-", Right: "3"}},
		{"calculate_at [1]", runner.Command{Op: "calculate_at", Addr: expr.Address{1}}},
		{"simplify_fraction 1,0", runner.Command{Op: "simplify_fraction", Addr: expr.Address{1, 0}}},
		{"calculate_at", runner.Command{Op: "calculate_at", Addr: expr.Address{}}},
		{"sub_to_add", runner.Command{Op: "sub_to_add"}},
		{"teleport somewhere", runner.Command{Op: "teleport"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := runner.ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLine_Keywords(t *testing.T) {
	got, err := runner.ParseLine(`apply_rule rule=add_zero label="drop the zero"`)
	require.NoError(t, err)
	assert.Equal(t, runner.Command{Op: "apply_rule", Rule: "add_zero", Label: "drop the zero"}, got)

	got, err = runner.ParseLine(`swap addr1=[1,0] addr2=[1,1] label=reorder`)
	require.NoError(t, err)
	assert.Equal(t, runner.Command{Op: "swap", Addr1: expr.Address{1, 0}, Addr2: expr.Address{1, 1}, Label: "reorder"}, got)

	got, err = runner.ParseLine(`apply_rule_at rule=add_zero addr=[1]`)
	require.NoError(t, err)
	assert.Equal(t, runner.Command{Op: "apply_rule_at", Rule: "add_zero", Addr: expr.Address{1}}, got)

	got, err = runner.ParseLine(`set_current text="x + 1 = 2"`)
	require.NoError(t, err)
	assert.Equal(t, "x + 1 = 2", got.Text)
}

func TestParseLine_Errors(t *testing.T) {
	for _, line := range []string{
		"add_rule lonely",
		"apply_rule",
		"apply_rule a b",
		"apply_rule_choice r one",
		"apply_rule_at add_zero",
		"apply_rule_at add_zero [0,x]",
		"apply_function f",
		"swap [0]",
		"swap [a] [0]",
		"arith_both_sides -",
		"calculate 1 +",
		"calculate_at [x]",
		"sub_to_add now",
		`apply_rule rule="open`,
		`apply_rule rule=a bogus`,
	} {
		_, err := runner.ParseLine(line)
		assert.ErrorIs(t, err, runner.ErrInvalidArgument, line)
	}

	for _, line := range []string{"", "   ", "# comment"} {
		_, err := runner.ParseLine(line)
		assert.ErrorIs(t, err, runner.ErrEmptyLine, "%q", line)
	}
}
