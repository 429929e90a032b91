package expr

import "slices"

// ArgumentSeparator joins function arguments, f(x, y). The parser treats it
// as the loosest binary operator.
const ArgumentSeparator = ","

// Context is the fixed configuration of a derivation. It is shared by
// pointer and must not be mutated once a Task holds it.
type Context struct {
	// Variables are the symbols that act as wildcards in patterns.
	Variables []string `json:"variables" yaml:"variables"`

	// BinaryOperators includes the argument separator.
	BinaryOperators []string `json:"binary_operators" yaml:"binary_operators"`

	// UnaryOperators includes function names.
	UnaryOperators []string `json:"unary_operators" yaml:"unary_operators"`

	// HandleNumerics allows numeric literals.
	HandleNumerics bool `json:"handle_numerics" yaml:"handle_numerics"`

	// Associative and Commutative declare operator capabilities. Chain
	// stripping and element swapping consult them.
	Associative []string `json:"associative,omitempty" yaml:"associative,omitempty"`
	Commutative []string `json:"commutative,omitempty" yaml:"commutative,omitempty"`
}

// IsVariable reports whether symbol is a declared pattern variable.
func (c *Context) IsVariable(symbol string) bool {
	return c != nil && slices.Contains(c.Variables, symbol)
}

// IsBinaryOperator reports whether symbol is a declared binary operator.
func (c *Context) IsBinaryOperator(symbol string) bool {
	return c != nil && slices.Contains(c.BinaryOperators, symbol)
}

// IsUnaryOperator reports whether symbol is a declared unary operator or function.
func (c *Context) IsUnaryOperator(symbol string) bool {
	return c != nil && slices.Contains(c.UnaryOperators, symbol)
}

// IsAssociative reports whether op is declared associative.
func (c *Context) IsAssociative(op string) bool {
	return c != nil && slices.Contains(c.Associative, op)
}

// IsCommutative reports whether op is declared commutative.
func (c *Context) IsCommutative(op string) bool {
	return c != nil && slices.Contains(c.Commutative, op)
}

// WithVariables returns a copy of c with extra variables appended. The
// receiver is left untouched.
func (c *Context) WithVariables(vars ...string) *Context {
	out := c.Clone()
	for _, v := range vars {
		if !slices.Contains(out.Variables, v) {
			out.Variables = append(out.Variables, v)
		}
	}
	return out
}

// Clone returns a deep copy.
func (c *Context) Clone() *Context {
	if c == nil {
		return &Context{}
	}
	return &Context{
		Variables:       slices.Clone(c.Variables),
		BinaryOperators: slices.Clone(c.BinaryOperators),
		UnaryOperators:  slices.Clone(c.UnaryOperators),
		HandleNumerics:  c.HandleNumerics,
		Associative:     slices.Clone(c.Associative),
		Commutative:     slices.Clone(c.Commutative),
	}
}
