package arithmetic

import (
	"fmt"

	"github.com/aretw0/equaio/pkg/expr"
)

// BothSidesPlaceholder is the symbol BothSides substitutes with each side.
const BothSidesPlaceholder = "#"

// BothSides returns the function "# op operand" for applying an arithmetic
// operation to both sides of an equality, together with its placeholder.
// Operator operands are bracketed so they keep their grouping.
func BothSides(op Operator, operand expr.Expression) (expr.Expression, string) {
	if operand.Type != expr.Value {
		operand = operand.WithBracket(true)
	}
	return expr.NewBinary(op.Symbol(), expr.NewValue(BothSidesPlaceholder), operand), BothSidesPlaceholder
}

// BothSidesLabel is the history label of a BothSides step.
func BothSidesLabel(op Operator, operand string) string {
	return fmt.Sprintf("%s both side by %s", op.Name(), operand)
}

// rewrite applies fn bottom-up to every node and reports whether any node
// changed.
func rewrite(e expr.Expression, fn func(expr.Expression) (expr.Expression, bool)) (expr.Expression, bool) {
	changed := false
	if len(e.Children) > 0 {
		children := make([]expr.Expression, len(e.Children))
		for i, c := range e.Children {
			var ok bool
			children[i], ok = rewrite(c, fn)
			changed = changed || ok
		}
		e.Children = children
	}
	out, ok := fn(e)
	return out, changed || ok
}

func toDual(from, to, unary string) func(expr.Expression) (expr.Expression, bool) {
	return func(e expr.Expression) (expr.Expression, bool) {
		if e.Type != expr.BinaryOperator || e.Symbol != from {
			return e, false
		}
		inverse := expr.NewUnary(unary, e.Children[1]).WithBracket(true)
		return expr.NewBinary(to, e.Children[0], inverse).WithBracket(e.Bracketed), true
	}
}

func fromDual(from, to, unary string) func(expr.Expression) (expr.Expression, bool) {
	return func(e expr.Expression) (expr.Expression, bool) {
		if e.Type != expr.BinaryOperator || e.Symbol != from {
			return e, false
		}
		right := e.Children[1]
		if right.Type != expr.UnaryOperator || right.Symbol != unary {
			return e, false
		}
		return expr.NewBinary(to, e.Children[0], right.Children[0]).WithBracket(e.Bracketed), true
	}
}

// TurnSubtractionToAddition rewrites every a - b into a + (-b).
func TurnSubtractionToAddition(e expr.Expression) (expr.Expression, bool) {
	return rewrite(e, toDual("-", "+", Negative))
}

// TurnAdditionToSubtraction rewrites every a + (-b) into a - b.
func TurnAdditionToSubtraction(e expr.Expression) (expr.Expression, bool) {
	return rewrite(e, fromDual("+", "-", Negative))
}

// TurnDivisionToMultiplication rewrites every a / b into a * (/b).
func TurnDivisionToMultiplication(e expr.Expression) (expr.Expression, bool) {
	return rewrite(e, toDual("/", "*", Reciprocal))
}

// TurnMultiplicationToDivision rewrites every a * (/b) into a / b.
func TurnMultiplicationToDivision(e expr.Expression) (expr.Expression, bool) {
	return rewrite(e, fromDual("*", "/", Reciprocal))
}

// RemoveAssocParentheses strips chain brackets for every operator ctx
// declares associative, and reports whether anything changed.
func RemoveAssocParentheses(e expr.Expression, ctx *expr.Context) (expr.Expression, bool) {
	out := e
	for _, op := range ctx.Associative {
		if out.ContainsOperator(op) {
			out = out.StripParenthesesForAssociativeOp(op)
		}
	}
	return out, !out.Equal(e)
}

// NormalizeAlgebra rewrites subtraction as addition of a negative, then
// flattens associative chains, so that x - 3 + 1 and x + (-3) + 1 share one
// form.
func NormalizeAlgebra(e expr.Expression, ctx *expr.Context) expr.Expression {
	out, _ := TurnSubtractionToAddition(e)
	out, _ = RemoveAssocParentheses(out, ctx)
	return out
}
