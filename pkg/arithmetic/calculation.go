package arithmetic

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
)

// decimalPlaces bounds the digits kept for results that do not terminate.
const decimalPlaces = 10

var literalPattern = regexp.MustCompile(`^-?(\d+(\.\d+)?|\.\d+)$`)

// ParseLiteral reads a numeric literal in the grammar the parser accepts,
// optionally negated.
func ParseLiteral(text string) (*big.Rat, bool) {
	text = strings.TrimSpace(text)
	if !literalPattern.MatchString(text) {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(text)
	return r, ok
}

// Literal builds the expression for a number. Negative numbers become a
// bracketed unary minus over the magnitude, the way "(-2)" parses.
func Literal(r *big.Rat) expr.Expression {
	if r.Sign() < 0 {
		return expr.NewUnary(Negative, expr.NewValue(formatRat(new(big.Rat).Neg(r)))).WithBracket(true)
	}
	return expr.NewValue(formatRat(r))
}

func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := r.FloatString(decimalPlaces)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// NumericValue reads a literal leaf or a negated literal leaf.
func NumericValue(e expr.Expression) (*big.Rat, bool) {
	switch e.Type {
	case expr.Value:
		return ParseLiteral(e.Symbol)
	case expr.UnaryOperator:
		if e.Symbol != Negative || e.Children[0].Type != expr.Value {
			return nil, false
		}
		r, ok := ParseLiteral(e.Children[0].Symbol)
		if !ok {
			return nil, false
		}
		return r.Neg(r), true
	}
	return nil, false
}

// Compute applies op to two numbers. Division by zero is undefined.
func Compute(op Operator, left, right *big.Rat) (*big.Rat, bool) {
	out := new(big.Rat)
	switch op {
	case Add:
		return out.Add(left, right), true
	case Subtract:
		return out.Sub(left, right), true
	case Multiply:
		return out.Mul(left, right), true
	case Divide:
		if right.Sign() == 0 {
			return nil, false
		}
		return out.Quo(left, right), true
	}
	return nil, false
}

// CreateCalculation builds the one-shot rule "left op right = result". It
// reports false when an operand is not a numeric literal or op is undefined
// on them.
func CreateCalculation(left, right string, op Operator) (expr.Expression, bool) {
	l, ok := ParseLiteral(left)
	if !ok {
		return expr.Expression{}, false
	}
	r, ok := ParseLiteral(right)
	if !ok {
		return expr.Expression{}, false
	}
	result, ok := Compute(op, l, r)
	if !ok {
		return expr.Expression{}, false
	}
	lhs := expr.NewBinary(op.Symbol(), Literal(l), Literal(r))
	return expr.NewEquality(lhs, Literal(result)), true
}

// CalculateAt evaluates the binary node at addr when both of its operands
// are numeric literals and returns the tree with the node replaced by the
// result.
func CalculateAt(e expr.Expression, addr expr.Address) (expr.Expression, error) {
	if !e.Has(addr) {
		return expr.Expression{}, fmt.Errorf("%w: no node at %v", domain.ErrCalculation, addr)
	}
	node := e.At(addr)
	op, ok := OperatorFor(node.Symbol)
	if node.Type != expr.BinaryOperator || !ok {
		return expr.Expression{}, fmt.Errorf("%w: %s is not an arithmetic operation", domain.ErrCalculation, node)
	}
	l, lok := NumericValue(node.Children[0])
	r, rok := NumericValue(node.Children[1])
	if !lok || !rok {
		return expr.Expression{}, fmt.Errorf("%w: operands of %s are not numbers", domain.ErrCalculation, node)
	}
	result, ok := Compute(op, l, r)
	if !ok {
		return expr.Expression{}, fmt.Errorf("%w: %s is undefined", domain.ErrCalculation, node)
	}
	return e.Replace(addr, Literal(result)), nil
}

// SimplifyFraction reduces the integer fraction n / d at addr by the
// greatest common divisor. A reduction to n / 1 is kept as a fraction.
func SimplifyFraction(e expr.Expression, addr expr.Address) (expr.Expression, error) {
	if !e.Has(addr) {
		return expr.Expression{}, fmt.Errorf("%w: no node at %v", domain.ErrCalculation, addr)
	}
	node := e.At(addr)
	if node.Type != expr.BinaryOperator || node.Symbol != "/" {
		return expr.Expression{}, fmt.Errorf("%w: %s is not a fraction", domain.ErrCalculation, node)
	}
	n, nok := integerLeaf(node.Children[0])
	d, dok := integerLeaf(node.Children[1])
	if !nok || !dok {
		return expr.Expression{}, fmt.Errorf("%w: %s is not an integer fraction", domain.ErrCalculation, node)
	}
	if d.Sign() == 0 {
		return expr.Expression{}, fmt.Errorf("%w: %s divides by zero", domain.ErrCalculation, node)
	}
	g := new(big.Int).GCD(nil, nil, n, d)
	if g.Sign() == 0 || g.Cmp(big.NewInt(1)) == 0 {
		return expr.Expression{}, fmt.Errorf("%w: %s is already in lowest terms", domain.ErrCalculation, node)
	}
	reduced := expr.NewBinary("/",
		expr.NewValue(new(big.Int).Quo(n, g).String()),
		expr.NewValue(new(big.Int).Quo(d, g).String()),
	).WithBracket(node.Bracketed)
	return e.Replace(addr, reduced), nil
}

func integerLeaf(e expr.Expression) (*big.Int, bool) {
	if e.Type != expr.Value {
		return nil, false
	}
	n, ok := new(big.Int).SetString(e.Symbol, 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}
