package expr

import "fmt"

// Bindings maps pattern variable names to the subtrees they matched.
type Bindings map[string]Expression

// CanPatternMatch is a shape-only check: a declared variable in the pattern
// accepts any subtree, any other pattern leaf accepts any leaf, and operator
// nodes need the same type, symbol and compatible children. It does not check
// that repeated variables bind equal subtrees.
func (e Expression) CanPatternMatch(pattern Expression, ctx *Context) bool {
	if pattern.Type == Value {
		if ctx.IsVariable(pattern.Symbol) {
			return true
		}
		return e.Type == Value
	}
	if e.Type != pattern.Type || e.Symbol != pattern.Symbol {
		return false
	}
	if len(e.Children) != len(pattern.Children) {
		return false
	}
	for i := range pattern.Children {
		if !e.Children[i].CanPatternMatch(pattern.Children[i], ctx) {
			return false
		}
	}
	return true
}

// TryMatchPattern unifies pattern against e. The first occurrence of a
// variable binds it; later occurrences must be structurally equal to that
// binding. Literal leaves must match symbol for symbol. A pattern without
// variables yields empty, non-nil bindings on success.
func (e Expression) TryMatchPattern(pattern Expression, ctx *Context) (Bindings, bool) {
	b := make(Bindings)
	if !e.unify(pattern, ctx, b) {
		return nil, false
	}
	return b, true
}

func (e Expression) unify(pattern Expression, ctx *Context, b Bindings) bool {
	if pattern.Type == Value {
		if ctx.IsVariable(pattern.Symbol) {
			if bound, ok := b[pattern.Symbol]; ok {
				return bound.Equal(e)
			}
			b[pattern.Symbol] = e
			return true
		}
		return e.Type == Value && e.Symbol == pattern.Symbol
	}
	if e.Type != pattern.Type || e.Symbol != pattern.Symbol || len(e.Children) != len(pattern.Children) {
		return false
	}
	for i := range pattern.Children {
		if !e.Children[i].unify(pattern.Children[i], ctx, b) {
			return false
		}
	}
	return true
}

// ApplyVariableMap instantiates e as a pattern, replacing each declared variable
// leaf by its binding and leaving operator structure intact. A variable that
// has no binding is a contract violation.
func (e Expression) ApplyVariableMap(b Bindings, ctx *Context) Expression {
	if e.Type == Value {
		if !ctx.IsVariable(e.Symbol) {
			return e
		}
		bound, ok := b[e.Symbol]
		if !ok {
			panic(fmt.Sprintf("expr: pattern variable %q has no binding", e.Symbol))
		}
		return bound
	}
	children := make([]Expression, len(e.Children))
	for i, c := range e.Children {
		children[i] = c.ApplyVariableMap(b, ctx)
	}
	e.Children = children
	return e
}

// FreeVariables returns the declared variables of e missing from b.
func (e Expression) FreeVariables(b Bindings, ctx *Context) []string {
	var missing []string
	for _, v := range e.ExtractVariables(ctx) {
		if _, ok := b[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
