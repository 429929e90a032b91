package expr

// Match is one rewrite site found by FindMatches.
type Match struct {
	Address  Address
	Bindings Bindings
}

// FindMatches lists every address of e, in pre-order, whose subtree unifies
// with pattern.
func (e Expression) FindMatches(pattern Expression, ctx *Context) []Match {
	var out []Match
	for _, addr := range e.AllAddresses() {
		site := e.At(addr)
		if !site.CanPatternMatch(pattern, ctx) {
			continue
		}
		b, ok := site.TryMatchPattern(pattern, ctx)
		if !ok {
			continue
		}
		out = append(out, Match{Address: addr, Bindings: b})
	}
	return out
}

// ApplyRuleEqual rewrites e with an equality rule: lhs is the pattern, rhs
// the template. It returns one candidate per match site in address order;
// an empty result means the rule applies nowhere.
//
// A template that mentions a variable absent from the pattern cannot be
// instantiated and yields no candidates. Neither does a rule that is not an
// equality.
func (e Expression) ApplyRuleEqual(rule Expression, ctx *Context) []Expression {
	if !rule.IsEquality() {
		return nil
	}
	var out []Expression
	for _, m := range e.FindMatches(rule.LHS(), ctx) {
		if next, ok := e.rewrite(m, rule.RHS(), ctx); ok {
			out = append(out, next)
		}
	}
	return out
}

// ApplyRuleEqualAt rewrites e with rule at addr only. It reports false when
// addr does not resolve, the subtree there does not match, or the rule is
// not an equality.
func (e Expression) ApplyRuleEqualAt(rule Expression, addr Address, ctx *Context) (Expression, bool) {
	if !rule.IsEquality() || !e.Has(addr) {
		return Expression{}, false
	}
	pattern := rule.LHS()
	site := e.At(addr)
	if !site.CanPatternMatch(pattern, ctx) {
		return Expression{}, false
	}
	b, ok := site.TryMatchPattern(pattern, ctx)
	if !ok {
		return Expression{}, false
	}
	return e.rewrite(Match{Address: addr, Bindings: b}, rule.RHS(), ctx)
}

func (e Expression) rewrite(m Match, template Expression, ctx *Context) (Expression, bool) {
	if len(template.FreeVariables(m.Bindings, ctx)) > 0 {
		return Expression{}, false
	}
	replacement := template.ApplyVariableMap(m.Bindings, ctx)
	if replacement.Type != Value {
		replacement.Bracketed = replacement.Bracketed || e.At(m.Address).Bracketed || e.needsGrouping(m.Address)
	} else {
		replacement.Bracketed = false
	}
	return e.Replace(m.Address, replacement), true
}

// needsGrouping reports whether an operator node placed at addr must be
// parenthesised to keep its meaning when printed. Only the sides of an
// equality and the argument of a function call are safe without.
func (e Expression) needsGrouping(addr Address) bool {
	if addr.IsRoot() {
		return false
	}
	parent := e.At(addr.Parent())
	switch {
	case parent.Type == BinaryOperator && parent.Symbol == EqualitySymbol:
		return false
	case parent.Type == UnaryOperator && IsFunctionSymbol(parent.Symbol):
		return false
	}
	return true
}
