package expr_test

import (
	"testing"

	"github.com/aretw0/equaio/pkg/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRuleEqual_ScenarioC(t *testing.T) {
	got := mustParse(t, "x + 0").ApplyRuleEqual(mustParseEq(t, "a + 0 = a"), algebra())
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].String())
}

func TestApplyRuleEqual_AllSitesInOrder(t *testing.T) {
	got := mustParse(t, "(k + 0) * (m + 0)").ApplyRuleEqual(mustParseEq(t, "a + 0 = a"), algebra())
	require.Len(t, got, 2)
	assert.Equal(t, "k * (m + 0)", got[0].String())
	assert.Equal(t, "(k + 0) * m", got[1].String())
}

func TestApplyRuleEqual_NoSite(t *testing.T) {
	got := mustParse(t, "k * 1").ApplyRuleEqual(mustParseEq(t, "a + 0 = a"), algebra())
	assert.Empty(t, got)
}

func TestApplyRuleEqual_FreeTemplateVariable(t *testing.T) {
	got := mustParse(t, "k + 1").ApplyRuleEqual(mustParseEq(t, "a = a + b"), algebra())
	assert.Empty(t, got)
}

func TestApplyRuleEqual_NotEquality(t *testing.T) {
	assert.Nil(t, mustParse(t, "k + 0").ApplyRuleEqual(mustParse(t, "a + 0"), algebra()))
}

func TestApplyRuleEqual_KeepsSiteBrackets(t *testing.T) {
	got := mustParse(t, "(k * 2) + 1").ApplyRuleEqual(mustParseEq(t, "a * b = b * a"), algebra())
	require.Len(t, got, 1)
	assert.Equal(t, "(2 * k) + 1", got[0].String())
}

func TestFindMatches_PreOrder(t *testing.T) {
	e := mustParse(t, "k + 0 + 0")
	matches := e.FindMatches(mustParse(t, "a + 0"), algebra())
	require.Len(t, matches, 2)
	assert.True(t, matches[0].Address.IsRoot())
	assert.Equal(t, "k + 0", matches[0].Bindings["a"].String())
	assert.True(t, matches[1].Address.Equal(expr.Address{0}))
	assert.Equal(t, "k", matches[1].Bindings["a"].String())
}

func TestApplyRuleEqual_GroupsNestedOperator(t *testing.T) {
	ctx := algebra()
	got := mustParseEq(t, "x = 3 * 1").ApplyRuleEqual(mustParseEq(t, "1 = 2 - 1"), ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "x = 3 * (2 - 1)", got[0].String())
	assert.True(t, got[0].Equal(mustParseEq(t, got[0].String())), "printed form reparses to the same tree")
}

func TestApplyRuleEqual_EqualitySidesStayBare(t *testing.T) {
	got := mustParseEq(t, "x + 1 = 5").ApplyRuleEqual(mustParseEq(t, "a + b = b + a"), algebra())
	require.Len(t, got, 1)
	assert.Equal(t, "1 + x = 5", got[0].String())
}

func TestApplyRuleEqualAt(t *testing.T) {
	e := mustParse(t, "(k + 0) * (m + 0)")
	rule := mustParseEq(t, "a + 0 = a")

	got, ok := e.ApplyRuleEqualAt(rule, expr.Address{1}, algebra())
	require.True(t, ok)
	assert.Equal(t, "(k + 0) * m", got.String())

	_, ok = e.ApplyRuleEqualAt(rule, expr.Address{}, algebra())
	assert.False(t, ok, "root does not match")
	_, ok = e.ApplyRuleEqualAt(rule, expr.Address{5}, algebra())
	assert.False(t, ok, "address out of range")
	_, ok = e.ApplyRuleEqualAt(mustParse(t, "a + 0"), expr.Address{0}, algebra())
	assert.False(t, ok, "not an equality")
}
