package expr_test

import (
	"testing"

	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func algebra() *expr.Context {
	return &expr.Context{
		Variables:       []string{"a", "b", "c", "x", "y"},
		BinaryOperators: []string{"+", "-", "*", "/", "^", ","},
		UnaryOperators:  []string{"-", "f"},
		HandleNumerics:  true,
		Associative:     []string{"+", "*"},
		Commutative:     []string{"+", "*"},
	}
}

func mustParse(t *testing.T, text string) expr.Expression {
	t.Helper()
	e, err := parser.ParseExpression(text, algebra())
	require.NoError(t, err)
	return e
}

func mustParseEq(t *testing.T, text string) expr.Expression {
	t.Helper()
	e, err := parser.ParseEquality(text, algebra())
	require.NoError(t, err)
	return e
}

func TestEqual_BracketMatters(t *testing.T) {
	plain := expr.NewBinary("+", expr.NewValue("a"), expr.NewValue("b"))
	assert.True(t, plain.Equal(expr.NewBinary("+", expr.NewValue("a"), expr.NewValue("b"))))
	assert.False(t, plain.Equal(plain.WithBracket(true)))
	assert.False(t, plain.Equal(expr.NewBinary("*", expr.NewValue("a"), expr.NewValue("b"))))
}

func TestValidate(t *testing.T) {
	require.NoError(t, mustParse(t, "f(a, b) + -c").Validate())

	broken := expr.Expression{Type: expr.BinaryOperator, Symbol: "+", Children: []expr.Expression{expr.NewValue("a")}}
	assert.Error(t, broken.Validate())
	assert.Error(t, expr.NewUnary("-", broken).Validate())
}

func TestLHS_PanicsOnLeaf(t *testing.T) {
	assert.Panics(t, func() { expr.NewValue("a").LHS() })
}

func TestAt_And_Replace(t *testing.T) {
	e := mustParse(t, "a + b * c")

	assert.Equal(t, "b * c", e.At(expr.Address{1}).String())
	assert.Equal(t, "c", e.At(expr.Address{1, 1}).String())
	assert.True(t, e.Has(expr.Address{1, 0}))
	assert.False(t, e.Has(expr.Address{0, 0}))

	replaced := e.Replace(expr.Address{1, 1}, expr.NewValue("x"))
	assert.Equal(t, "a + b * x", replaced.String())
	assert.Equal(t, "a + b * c", e.String(), "receiver must be untouched")

	assert.Equal(t, "y", e.Replace(expr.Root, expr.NewValue("y")).String())
}

func TestAt_PanicsOutOfRange(t *testing.T) {
	e := mustParse(t, "a + b")
	assert.Panics(t, func() { e.At(expr.Address{2}) })
	assert.Panics(t, func() { e.At(expr.Address{0, 0}) })
	assert.Panics(t, func() { e.Replace(expr.Address{0, 1}, expr.NewValue("x")) })
}

func TestAllAddresses_PreOrder(t *testing.T) {
	e := mustParse(t, "a + b * c")
	got := e.AllAddresses()
	want := []expr.Address{{}, {0}, {1}, {1, 0}, {1, 1}}
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "index %d: got %v want %v", i, got[i], want[i])
	}
}

func TestExtractVariables_FirstOccurrence(t *testing.T) {
	e := mustParse(t, "y + 2 * x + y + z")
	assert.Equal(t, []string{"y", "x"}, e.ExtractVariables(algebra()))
}

func TestSubstituteSymbol(t *testing.T) {
	tmpl := mustParse(t, "x - 3")

	got := tmpl.SubstituteSymbol("x", mustParse(t, "x + 3"))
	assert.Equal(t, "(x + 3) - 3", got.String())

	got = tmpl.SubstituteSymbol("x", expr.NewValue("5"))
	assert.Equal(t, "5 - 3", got.String())

	// Literal symbols are substituted too, not only declared variables.
	got = mustParse(t, "k * k").SubstituteSymbol("k", expr.NewValue("2"))
	assert.Equal(t, "2 * 2", got.String())

	assert.Equal(t, "x - 3", tmpl.String())
}

func TestString_Forms(t *testing.T) {
	assert.Equal(t, "f(a, b)", expr.NewUnary("f", expr.NewBinary(",", expr.NewValue("a"), expr.NewValue("b"))).String())
	assert.Equal(t, "-a", expr.NewUnary("-", expr.NewValue("a")).String())
	assert.Equal(t, "(a)", expr.NewValue("a").WithBracket(true).String())
	assert.Equal(t, "a = b", expr.NewEquality(expr.NewValue("a"), expr.NewValue("b")).String())
}

func TestAddress(t *testing.T) {
	a := expr.Address{0, 1}
	assert.Equal(t, "[0,1]", a.String())
	assert.True(t, a.Parent().Equal(expr.Address{0}))
	assert.True(t, a.Child(2).Equal(expr.Address{0, 1, 2}))
	assert.True(t, a.HasPrefix(expr.Address{0}))
	assert.False(t, a.HasPrefix(expr.Address{1}))
	assert.Panics(t, func() { expr.Root.Parent() })

	// Child must not alias the receiver.
	base := make(expr.Address, 1, 4)
	c1, c2 := base.Child(0), base.Child(1)
	assert.False(t, c1.Equal(c2))

	parsed, err := expr.ParseAddress("[1, 0]")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(expr.Address{1, 0}))

	parsed, err = expr.ParseAddress("[]")
	require.NoError(t, err)
	assert.True(t, parsed.IsRoot())

	_, err = expr.ParseAddress("[a]")
	assert.Error(t, err)
	_, err = expr.ParseAddress("-1")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	ctx := algebra()
	assert.True(t, ctx.IsVariable("x"))
	assert.False(t, ctx.IsVariable("k"))
	assert.True(t, ctx.IsCommutative("+"))
	assert.False(t, ctx.IsAssociative("-"))

	more := ctx.WithVariables("k", "x")
	assert.True(t, more.IsVariable("k"))
	assert.False(t, ctx.IsVariable("k"))
	assert.Len(t, more.Variables, len(ctx.Variables)+1)

	var none *expr.Context
	assert.False(t, none.IsVariable("x"))
	assert.NotNil(t, none.Clone())
}
