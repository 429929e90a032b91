// Package arithmetic holds the numeric side of derivations: the arithmetic
// operator table and Context, one-shot calculation rules, and the
// structural rewrites between an operator and its dual form.
package arithmetic

import (
	"fmt"

	"github.com/aretw0/equaio/pkg/expr"
)

// Operator is a two-operand arithmetic operation.
type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
)

// Unary symbols produced by the dual-form rewrites.
const (
	Negative   = "-"
	Reciprocal = "/"
)

var operators = []struct {
	symbol string
	name   string
}{
	Add:      {"+", "add"},
	Subtract: {"-", "subtract"},
	Multiply: {"*", "multiply"},
	Divide:   {"/", "divide"},
}

// Operators lists every defined operator in table order.
func Operators() []Operator {
	return []Operator{Add, Subtract, Multiply, Divide}
}

func (o Operator) valid() bool { return o >= 0 && int(o) < len(operators) }

// Symbol is the binary symbol used in expressions.
func (o Operator) Symbol() string {
	if !o.valid() {
		return "?"
	}
	return operators[o].symbol
}

// Name is the verb used in step labels ("subtract both side by 3").
func (o Operator) Name() string {
	if !o.valid() {
		return fmt.Sprintf("operator(%d)", int(o))
	}
	return operators[o].name
}

func (o Operator) String() string { return o.Name() }

// ParseOperator accepts either a symbol ("-") or a name ("subtract").
func ParseOperator(s string) (Operator, error) {
	for i, op := range operators {
		if s == op.symbol || s == op.name {
			return Operator(i), nil
		}
	}
	return 0, fmt.Errorf("unknown arithmetic operator %q", s)
}

// OperatorFor maps a binary symbol back to its Operator.
func OperatorFor(symbol string) (Operator, bool) {
	for i, op := range operators {
		if symbol == op.symbol {
			return Operator(i), true
		}
	}
	return 0, false
}

// Context returns the arithmetic Context with the given pattern variables.
// Addition and multiplication are declared associative and commutative.
func Context(variables ...string) *expr.Context {
	return &expr.Context{
		Variables:       append([]string(nil), variables...),
		BinaryOperators: []string{"+", "-", "*", "/", "^", expr.ArgumentSeparator},
		UnaryOperators:  []string{Negative, Reciprocal},
		HandleNumerics:  true,
		Associative:     []string{"+", "*"},
		Commutative:     []string{"+", "*"},
	}
}
