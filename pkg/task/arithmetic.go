package task

import (
	"fmt"

	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/parser"
)

// ApplyArithmeticToBothSide applies "side op value" to both sides, e.g.
// subtracting 3 turns x + 3 = 5 into (x + 3) - 3 = 5 - 3. An empty label
// defaults to "<op> both side by <value>".
func (t *Task) ApplyArithmeticToBothSide(op arithmetic.Operator, value, label string) bool {
	if _, ok := t.requireEquality(OpArithBothSides); !ok {
		return false
	}
	if _, ok := arithmetic.OperatorFor(op.Symbol()); !ok {
		return t.fail(OpArithBothSides, domain.ErrCalculation, fmt.Sprintf("unknown arithmetic operator %s", op))
	}
	operand, err := parser.ParseExpression(value, t.ctx)
	if err != nil {
		return t.fail(OpArithBothSides, domain.ErrParse, fmt.Sprintf("failed to parse value: %s", value))
	}
	if label == "" {
		label = arithmetic.BothSidesLabel(op, value)
	}
	fn, placeholder := arithmetic.BothSides(op, operand)
	return t.applyFunction(OpArithBothSides, fn, placeholder, label)
}

// ApplyArithmeticCalculation rewrites the first occurrence of
// "left op right" in current with its value.
func (t *Task) ApplyArithmeticCalculation(left, right string, op arithmetic.Operator, label string) bool {
	if _, ok := t.requireEquality(OpCalculate); !ok {
		return false
	}
	rule, ok := arithmetic.CreateCalculation(left, right, op)
	if !ok {
		return t.fail(OpCalculate, domain.ErrCalculation, fmt.Sprintf("failed to create calculation: %s %s %s", left, op.Name(), right))
	}
	if label == "" {
		label = "calculate " + rule.String()
	}
	return t.applyRule(OpCalculate, rule, label, 0, label)
}

// ApplyArithmeticCalculationAt evaluates the literal operation at addr.
func (t *Task) ApplyArithmeticCalculationAt(addr expr.Address, label string) bool {
	cur, ok := t.requireEquality(OpCalculateAt)
	if !ok {
		return false
	}
	next, err := arithmetic.CalculateAt(cur, addr)
	if err != nil {
		return t.failErr(OpCalculateAt, domain.ErrCalculation, err)
	}
	if label == "" {
		label = "calculate " + cur.At(addr).WithBracket(false).String()
	}
	return t.commitChange(OpCalculateAt, label, cur, next, "calculation leaves the statement unchanged")
}

// ApplyArithmeticSimplifyFraction reduces the integer fraction at addr.
func (t *Task) ApplyArithmeticSimplifyFraction(addr expr.Address, label string) bool {
	cur, ok := t.requireEquality(OpSimplifyFraction)
	if !ok {
		return false
	}
	next, err := arithmetic.SimplifyFraction(cur, addr)
	if err != nil {
		return t.failErr(OpSimplifyFraction, domain.ErrCalculation, err)
	}
	if label == "" {
		label = "simplify fraction " + cur.At(addr).WithBracket(false).String()
	}
	return t.commitChange(OpSimplifyFraction, label, cur, next, "fraction is already in lowest terms")
}

type rewriteFunc func(expr.Expression) (expr.Expression, bool)

func (t *Task) applyRewrite(op, label, nothing string, fn rewriteFunc) bool {
	cur, ok := t.requireEquality(op)
	if !ok {
		return false
	}
	next, changed := fn(cur)
	if !changed {
		return t.fail(op, domain.ErrNoMatch, nothing)
	}
	return t.commitChange(op, label, cur, next, nothing)
}

// TurnSubtractionToAddition rewrites every a - b in current to a + (-b).
func (t *Task) TurnSubtractionToAddition() bool {
	return t.applyRewrite(OpSubToAdd, "turn subtraction to addition",
		"there is no subtraction to turn into addition", arithmetic.TurnSubtractionToAddition)
}

// TurnAdditionToSubtraction rewrites every a + (-b) in current to a - b.
func (t *Task) TurnAdditionToSubtraction() bool {
	return t.applyRewrite(OpAddToSub, "turn addition to subtraction",
		"there is no addition of a negative to turn into subtraction", arithmetic.TurnAdditionToSubtraction)
}

// TurnDivisionToMultiplication rewrites every a / b in current to a * (/b).
func (t *Task) TurnDivisionToMultiplication() bool {
	return t.applyRewrite(OpDivToMul, "turn division to multiplication",
		"there is no division to turn into multiplication", arithmetic.TurnDivisionToMultiplication)
}

// TurnMultiplicationToDivision rewrites every a * (/b) in current to a / b.
func (t *Task) TurnMultiplicationToDivision() bool {
	return t.applyRewrite(OpMulToDiv, "turn multiplication to division",
		"there is no multiplication by a reciprocal to turn into division", arithmetic.TurnMultiplicationToDivision)
}

// RemoveAssocParentheses strips grouping inside chains of associative
// operators.
func (t *Task) RemoveAssocParentheses() bool {
	return t.applyRewrite(OpRemoveAssocParens, "remove associative parenthesis",
		"there is no associative parenthesis to remove", func(e expr.Expression) (expr.Expression, bool) {
			return arithmetic.RemoveAssocParentheses(e, t.ctx)
		})
}
