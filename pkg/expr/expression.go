package expr

import (
	"fmt"
	"strings"
	"unicode"
)

// Type tags an expression node.
type Type int

const (
	Value Type = iota
	UnaryOperator
	BinaryOperator
)

// EqualitySymbol is the top symbol of every statement and rule.
const EqualitySymbol = "="

// String returns the lowercase name used in the JSON encoding.
func (t Type) String() string {
	switch t {
	case Value:
		return "value"
	case UnaryOperator:
		return "unary"
	case BinaryOperator:
		return "binary"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Arity is the exact number of children a node of this type owns.
func (t Type) Arity() int {
	switch t {
	case UnaryOperator:
		return 1
	case BinaryOperator:
		return 2
	}
	return 0
}

// Expression is an immutable tree node.
//
// Children must never be mutated after construction: every transformation in
// this package builds fresh slices along the rewritten path and shares the
// untouched subtrees.
type Expression struct {
	Type      Type
	Symbol    string
	Bracketed bool
	Children  []Expression
}

// NewValue returns a leaf node.
func NewValue(symbol string) Expression {
	return Expression{Type: Value, Symbol: symbol}
}

// NewUnary returns a one-child operator node.
func NewUnary(symbol string, child Expression) Expression {
	return Expression{Type: UnaryOperator, Symbol: symbol, Children: []Expression{child}}
}

// NewBinary returns a two-child operator node.
func NewBinary(symbol string, left, right Expression) Expression {
	return Expression{Type: BinaryOperator, Symbol: symbol, Children: []Expression{left, right}}
}

// NewEquality returns lhs = rhs.
func NewEquality(lhs, rhs Expression) Expression {
	return NewBinary(EqualitySymbol, lhs, rhs)
}

// WithBracket returns a copy of e with the bracketed flag set to b.
func (e Expression) WithBracket(b bool) Expression {
	e.Bracketed = b
	return e
}

// IsEquality reports whether e is a binary node with the equality symbol.
func (e Expression) IsEquality() bool {
	return e.Type == BinaryOperator && e.Symbol == EqualitySymbol
}

// LHS returns the left child of a binary node.
func (e Expression) LHS() Expression {
	e.mustBe(BinaryOperator)
	return e.Children[0]
}

// RHS returns the right child of a binary node.
func (e Expression) RHS() Expression {
	e.mustBe(BinaryOperator)
	return e.Children[1]
}

// Validate checks the child-count invariant over the whole tree.
func (e Expression) Validate() error {
	if len(e.Children) != e.Type.Arity() {
		return fmt.Errorf("expr: %s node %q has %d children, want %d", e.Type, e.Symbol, len(e.Children), e.Type.Arity())
	}
	for _, c := range e.Children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e Expression) mustBe(t Type) {
	if e.Type != t || len(e.Children) != t.Arity() {
		panic(fmt.Sprintf("expr: expected %s node, got %s %q with %d children", t, e.Type, e.Symbol, len(e.Children)))
	}
}

// Equal reports deep structural equality over type, symbol, bracketed flag
// and children.
func (e Expression) Equal(other Expression) bool {
	if e.Type != other.Type || e.Symbol != other.Symbol || e.Bracketed != other.Bracketed {
		return false
	}
	if len(e.Children) != len(other.Children) {
		return false
	}
	for i := range e.Children {
		if !e.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// String renders infix text. Parentheses appear only on bracketed nodes.
func (e Expression) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e Expression) write(sb *strings.Builder) {
	if e.Bracketed {
		sb.WriteByte('(')
	}
	switch e.Type {
	case Value:
		sb.WriteString(e.Symbol)
	case UnaryOperator:
		sb.WriteString(e.Symbol)
		if IsFunctionSymbol(e.Symbol) {
			sb.WriteByte('(')
			e.Children[0].write(sb)
			sb.WriteByte(')')
		} else {
			e.Children[0].write(sb)
		}
	case BinaryOperator:
		e.Children[0].write(sb)
		if e.Symbol == ArgumentSeparator {
			sb.WriteString(", ")
		} else {
			sb.WriteByte(' ')
			sb.WriteString(e.Symbol)
			sb.WriteByte(' ')
		}
		e.Children[1].write(sb)
	}
	if e.Bracketed {
		sb.WriteByte(')')
	}
}

// IsFunctionSymbol reports whether a unary symbol is written in call form,
// f(x), rather than as a prefix operator.
func IsFunctionSymbol(symbol string) bool {
	if symbol == "" {
		return false
	}
	for _, r := range symbol {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// ExtractVariables returns the context-declared variables appearing in e, in
// order of first occurrence.
func (e Expression) ExtractVariables(ctx *Context) []string {
	var out []string
	seen := make(map[string]bool)
	e.walk(nil, func(_ Address, node Expression) {
		if node.Type == Value && ctx.IsVariable(node.Symbol) && !seen[node.Symbol] {
			seen[node.Symbol] = true
			out = append(out, node.Symbol)
		}
	})
	return out
}

// SubstituteSymbol replaces every node whose symbol equals from with a copy
// of to. This is textual substitution: any node sharing the symbol is
// replaced, whether or not the context declares it a variable. The root is
// never replaced itself, only its descendants.
//
// Operator replacements are marked bracketed so the substituted operand keeps
// its grouping when printed.
func (e Expression) SubstituteSymbol(from string, to Expression) Expression {
	if len(e.Children) == 0 {
		return e
	}
	if to.Type != Value {
		to = to.WithBracket(true)
	}
	children := make([]Expression, len(e.Children))
	for i, c := range e.Children {
		if c.Symbol == from {
			children[i] = to
		} else {
			children[i] = c.SubstituteSymbol(from, to)
		}
	}
	e.Children = children
	return e
}
