package task

import (
	"fmt"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/parser"
)

const (
	labelInitFromTarget = "initialize with target lhs"
	labelSwap           = "rearrange"
)

// SetCurrentEq parses text as an equality and makes it the current
// statement. Setting current again starts a new history entry rather than
// resetting history.
func (t *Task) SetCurrentEq(text string) bool {
	e, err := parser.ParseEquality(text, t.ctx)
	if err != nil {
		return t.fail(OpSetCurrent, domain.ErrParse, fmt.Sprintf("failed to parse statement: %s", text))
	}
	return t.commit(OpSetCurrent, "", e)
}

// SetTargetEq parses text as an equality and makes it the goal.
func (t *Task) SetTargetEq(text string) bool {
	e, err := parser.ParseEquality(text, t.ctx)
	if err != nil {
		return t.fail(OpSetTarget, domain.ErrParse, fmt.Sprintf("failed to parse statement: %s", text))
	}
	t.target = &e
	return t.succeed(OpSetTarget)
}

// AddRuleEq parses text as an equality rule and stores it under name,
// replacing any rule of the same name.
func (t *Task) AddRuleEq(name, text string) bool {
	e, err := parser.ParseEquality(text, t.ctx)
	if err != nil {
		return t.fail(OpAddRule, domain.ErrParse, fmt.Sprintf("failed to parse rule: %s", text))
	}
	return t.AddRuleExpr(name, e)
}

// AddRuleExpr stores an already built rule.
func (t *Task) AddRuleExpr(name string, rule expr.Expression) bool {
	return t.AddLabeledRule(name, rule, "")
}

// AddLabeledRule stores rule with the label its applications record in
// history. An empty label falls back to "apply rule: <name>".
func (t *Task) AddLabeledRule(name string, rule expr.Expression, label string) bool {
	if !rule.IsEquality() {
		return t.fail(OpAddRule, domain.ErrParse, fmt.Sprintf("failed to parse rule: %s is not an equality", rule))
	}
	t.rules[name] = rule
	if label == "" {
		delete(t.ruleLabels, name)
	} else {
		t.ruleLabels[name] = label
	}
	return t.succeed(OpAddRule)
}

// InitCurrentWithTargetLHS seeds current with lhs = lhs of the target.
func (t *Task) InitCurrentWithTargetLHS() bool {
	if t.target == nil {
		return t.fail(OpInitFromTarget, domain.ErrTargetNotSet, domain.ErrTargetNotSet.Error())
	}
	lhs := t.target.LHS()
	return t.commit(OpInitFromTarget, labelInitFromTarget, expr.NewEquality(lhs, lhs))
}

// ApplyFunctionToBothSide parses fn and applies it to both sides, see
// ApplyFunctionToBothSideExpr.
func (t *Task) ApplyFunctionToBothSide(fn, varname, label string) bool {
	e, err := parser.ParseExpression(fn, t.ctx)
	if err != nil {
		return t.fail(OpApplyFunction, domain.ErrParse, fmt.Sprintf("failed to parse function: %s", fn))
	}
	return t.ApplyFunctionToBothSideExpr(e, varname, label)
}

// ApplyFunctionToBothSideExpr turns lhs = rhs into fn[varname←lhs] =
// fn[varname←rhs]. Substitution is by symbol name, not by pattern binding.
// An empty label defaults to "apply <fn> to both side".
func (t *Task) ApplyFunctionToBothSideExpr(fn expr.Expression, varname, label string) bool {
	return t.applyFunction(OpApplyFunction, fn, varname, label)
}

func (t *Task) applyFunction(op string, fn expr.Expression, varname, label string) bool {
	cur, ok := t.requireEquality(op)
	if !ok {
		return false
	}
	if label == "" {
		label = fmt.Sprintf("apply %s to both side", fn)
	}
	lhs := substitute(fn, varname, cur.LHS())
	rhs := substitute(fn, varname, cur.RHS())
	return t.commitChange(op, label, cur, expr.NewEquality(lhs, rhs),
		fmt.Sprintf("applying %s to both side leaves the statement unchanged", fn))
}

// substitute also covers the identity function, whose root is the variable.
func substitute(fn expr.Expression, varname string, side expr.Expression) expr.Expression {
	if fn.Type == expr.Value && fn.Symbol == varname {
		return side
	}
	return fn.SubstituteSymbol(varname, side)
}

// ApplyRuleExpr rewrites current with rule at its first match site.
func (t *Task) ApplyRuleExpr(rule expr.Expression, label string) bool {
	name := label
	if name == "" {
		name = rule.String()
	}
	return t.applyRule(OpApplyRule, rule, name, 0, label)
}

// applyRule commits candidate choice of rule; name identifies the rule in
// failure messages.
func (t *Task) applyRule(op string, rule expr.Expression, name string, choice int, label string) bool {
	cur, ok := t.requireEquality(op)
	if !ok {
		return false
	}
	candidates := cur.ApplyRuleEqual(rule, t.ctx)
	if len(candidates) == 0 {
		return t.fail(op, domain.ErrNoMatch, fmt.Sprintf("failed to apply rule: %s", name))
	}
	if choice < 0 || choice >= len(candidates) {
		return t.fail(op, domain.ErrNoMatch, fmt.Sprintf("failed to apply rule: %s has %d candidates, no choice %d", name, len(candidates), choice))
	}
	return t.commitChange(op, label, cur, candidates[choice],
		fmt.Sprintf("failed to apply rule: %s leaves the statement unchanged", name))
}

// lookupRule checks current before the rule so that a fresh task reports
// the missing statement first.
func (t *Task) lookupRule(op, rulename string) (expr.Expression, bool) {
	if _, ok := t.requireEquality(op); !ok {
		return expr.Expression{}, false
	}
	rule, ok := t.rules[rulename]
	if !ok {
		return expr.Expression{}, t.fail(op, domain.ErrRuleNotDefined, fmt.Sprintf("rule %s is not defined", rulename))
	}
	return rule, true
}

func (t *Task) ruleLabel(rulename, label string) string {
	if label != "" {
		return label
	}
	if stored := t.ruleLabels[rulename]; stored != "" {
		return stored
	}
	return "apply rule: " + rulename
}

// ApplyRule applies a stored rule at its first match site.
func (t *Task) ApplyRule(rulename, label string) bool {
	rule, ok := t.lookupRule(OpApplyRule, rulename)
	if !ok {
		return false
	}
	return t.applyRule(OpApplyRule, rule, rulename, 0, t.ruleLabel(rulename, label))
}

// ApplyRuleChoice commits the candidate at index instead of the first one.
func (t *Task) ApplyRuleChoice(rulename string, index int, label string) bool {
	rule, ok := t.lookupRule(OpApplyRuleChoice, rulename)
	if !ok {
		return false
	}
	return t.applyRule(OpApplyRuleChoice, rule, rulename, index, t.ruleLabel(rulename, label))
}

// ApplyRuleAt rewrites current with a stored rule at addr only, which must
// be a match site of the rule's lhs.
func (t *Task) ApplyRuleAt(rulename string, addr expr.Address, label string) bool {
	rule, ok := t.lookupRule(OpApplyRuleAt, rulename)
	if !ok {
		return false
	}
	cur := *t.current
	if !cur.Has(addr) {
		return t.fail(OpApplyRuleAt, domain.ErrNoMatch, fmt.Sprintf("failed to apply rule: %s, address %s is out of range", rulename, addr))
	}
	next, ok := cur.ApplyRuleEqualAt(rule, addr, t.ctx)
	if !ok {
		return t.fail(OpApplyRuleAt, domain.ErrNoMatch, fmt.Sprintf("failed to apply rule: %s does not match at %s", rulename, addr))
	}
	return t.commitChange(OpApplyRuleAt, t.ruleLabel(rulename, label), cur, next,
		fmt.Sprintf("failed to apply rule: %s leaves the statement unchanged", rulename))
}

// Candidates lists every rewrite of current by a stored rule, in address
// order. It changes nothing, not even the diagnostic log.
func (t *Task) Candidates(rulename string) ([]expr.Expression, bool) {
	rule, ok := t.rules[rulename]
	if !ok || t.current == nil {
		return nil, false
	}
	return t.current.ApplyRuleEqual(rule, t.ctx), true
}

// TrySwapTwoElement exchanges two operands of the same chain in current.
// The chain operator must be declared commutative.
func (t *Task) TrySwapTwoElement(addr1, addr2 expr.Address, label string) bool {
	if t.current == nil {
		return t.fail(OpSwap, domain.ErrCurrentNotSet, domain.ErrCurrentNotSet.Error())
	}
	cur := *t.current
	if !cur.IsInSameOperatorChain(addr1, addr2) {
		return t.fail(OpSwap, domain.ErrNotSameChain, "trying to swap, but the two element are not in the same operator chain")
	}
	op, _ := cur.ChainOperator(addr1)
	if !t.ctx.IsCommutative(op) {
		return t.fail(OpSwap, domain.ErrNotCommutative, fmt.Sprintf("trying to swap, but operator %s is not commutative", op))
	}
	if label == "" {
		label = labelSwap
	}
	return t.commitChange(OpSwap, label, cur, cur.SwapTwoElement(addr1, addr2),
		"trying to swap, but the statement is unchanged")
}
