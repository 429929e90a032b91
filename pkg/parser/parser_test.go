package parser_test

import (
	"testing"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *expr.Context {
	return &expr.Context{
		Variables:       []string{"x", "y", "X"},
		BinaryOperators: []string{"+", "-", "*", "/", "^", ","},
		UnaryOperators:  []string{"-", "f", "sqrt"},
		HandleNumerics:  true,
	}
}

func v(s string) expr.Expression { return expr.NewValue(s) }

func TestParseExpression_Structure(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		name string
		in   string
		want expr.Expression
	}{
		{"left assoc", "a + b + c", expr.NewBinary("+", expr.NewBinary("+", v("a"), v("b")), v("c"))},
		{"precedence", "a + b * c", expr.NewBinary("+", v("a"), expr.NewBinary("*", v("b"), v("c")))},
		{"brackets recorded", "(a + b) * c", expr.NewBinary("*", expr.NewBinary("+", v("a"), v("b")).WithBracket(true), v("c"))},
		{"power right assoc", "2 ^ 3 ^ 2", expr.NewBinary("^", v("2"), expr.NewBinary("^", v("3"), v("2")))},
		{"unary binds tighter than plus", "-x + 1", expr.NewBinary("+", expr.NewUnary("-", v("x")), v("1"))},
		{"function call", "f(x, y)", expr.NewUnary("f", expr.NewBinary(",", v("x"), v("y")))},
		{"no spaces", "x+3", expr.NewBinary("+", v("x"), v("3"))},
		{"decimal", "1.5 * y", expr.NewBinary("*", v("1.5"), v("y"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseExpression(tt.in, ctx)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseExpression_PrintsBack(t *testing.T) {
	ctx := testContext()
	for _, in := range []string{
		"a + b + c",
		"(a + b) * c",
		"a * (b + c)",
		"f(x, y) + 1",
		"sqrt(x)",
		"-x",
		"-(x + 1)",
	} {
		got, err := parser.ParseExpression(in, ctx)
		require.NoError(t, err, in)
		assert.Equal(t, in, got.String())
	}
}

func TestParseExpression_Errors(t *testing.T) {
	ctx := testContext()
	for _, in := range []string{
		"",
		"x +",
		"(x + 1",
		"x + 1)",
		"x ? y",
		"* x",
		"f x",
		"x = 1",
	} {
		_, err := parser.ParseExpression(in, ctx)
		assert.ErrorIs(t, err, domain.ErrParse, "input %q", in)
	}
}

func TestParseExpression_NumericsDisabled(t *testing.T) {
	ctx := testContext()
	ctx.HandleNumerics = false

	_, err := parser.ParseExpression("2 * x", ctx)
	assert.ErrorIs(t, err, domain.ErrParse)

	got, err := parser.ParseExpression("y * x", ctx)
	require.NoError(t, err)
	assert.Equal(t, "y * x", got.String())
}

func TestParseStatement(t *testing.T) {
	ctx := testContext()

	got, err := parser.ParseStatement("x + 3 = 5", "=", ctx)
	require.NoError(t, err)
	assert.True(t, got.IsEquality())
	assert.Equal(t, "x + 3", got.LHS().String())
	assert.Equal(t, "5", got.RHS().String())

	got, err = parser.ParseEquality("(x + 1) * 2 = y", ctx)
	require.NoError(t, err)
	assert.True(t, got.LHS().LHS().Bracketed)

	_, err = parser.ParseStatement("x + 1", "=", ctx)
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = parser.ParseStatement("x = y = 1", "=", ctx)
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = parser.ParseStatement("x + = 1", "=", ctx)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestParsePrefix(t *testing.T) {
	ctx := testContext()

	got, err := parser.ParsePrefix("=(+(X,0),X)", ctx)
	require.NoError(t, err)
	want := expr.NewEquality(expr.NewBinary("+", v("X"), v("0")), v("X"))
	assert.True(t, want.Equal(got), "got %s", got)
	assert.Equal(t, "X + 0 = X", got.String())

	got, err = parser.ParsePrefix("-(x)", ctx)
	require.NoError(t, err)
	assert.Equal(t, expr.UnaryOperator, got.Type)

	got, err = parser.ParsePrefix("f(x, y, 1)", ctx)
	require.NoError(t, err)
	assert.Equal(t, "f(x, y, 1)", got.String())

	for _, in := range []string{"+(x,y,1)", "+(x", "+(x,y))", "", "+(,y)"} {
		_, err := parser.ParsePrefix(in, ctx)
		assert.ErrorIs(t, err, domain.ErrParse, "input %q", in)
	}
}
