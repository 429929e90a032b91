package expr

import "fmt"

// OperatorChainFrom returns the operand addresses of the chain rooted at
// addr, left to right. The chain is every node reachable by descending
// through children that carry the same binary symbol as the node at addr,
// whatever their brackets. A non-binary node has no chain.
func (e Expression) OperatorChainFrom(addr Address) []Address {
	node := e.At(addr)
	if node.Type != BinaryOperator {
		return nil
	}
	var out []Address
	collectOperands(node, node.Symbol, addr, &out)
	return out
}

func collectOperands(node Expression, op string, addr Address, out *[]Address) {
	for i, c := range node.Children {
		child := addr.Child(i)
		if c.Type == BinaryOperator && c.Symbol == op {
			collectOperands(c, op, child, out)
			continue
		}
		*out = append(*out, child)
	}
}

// chainRoot climbs from an operand to the top of its maximal chain. ok is
// false for the root itself or when the parent is not binary.
func (e Expression) chainRoot(addr Address) (Address, bool) {
	if addr.IsRoot() || !e.Has(addr) {
		return nil, false
	}
	root := addr.Parent()
	parent := e.At(root)
	if parent.Type != BinaryOperator {
		return nil, false
	}
	for !root.IsRoot() {
		up := root.Parent()
		n := e.At(up)
		if n.Type != BinaryOperator || n.Symbol != parent.Symbol {
			break
		}
		root = up
	}
	return root, true
}

// ChainOperator returns the operator symbol of the chain addr is an operand
// of, if any.
func (e Expression) ChainOperator(addr Address) (string, bool) {
	root, ok := e.chainRoot(addr)
	if !ok {
		return "", false
	}
	return e.At(root).Symbol, true
}

// IsInSameOperatorChain reports whether both addresses are operands of the
// same maximal operator chain. It is symmetric in its arguments.
func (e Expression) IsInSameOperatorChain(addr1, addr2 Address) bool {
	root1, ok := e.chainRoot(addr1)
	if !ok {
		return false
	}
	root2, ok := e.chainRoot(addr2)
	if !ok || !root1.Equal(root2) {
		return false
	}
	var in1, in2 bool
	for _, a := range e.OperatorChainFrom(root1) {
		in1 = in1 || a.Equal(addr1)
		in2 = in2 || a.Equal(addr2)
	}
	return in1 && in2
}

// SwapTwoElement exchanges the operands at the two addresses. Both must lie
// in the same operator chain; anything else is a contract violation.
func (e Expression) SwapTwoElement(addr1, addr2 Address) Expression {
	if !e.IsInSameOperatorChain(addr1, addr2) {
		panic(fmt.Sprintf("expr: %v and %v are not in the same operator chain", addr1, addr2))
	}
	first, second := e.At(addr1), e.At(addr2)
	return e.Replace(addr1, second).Replace(addr2, first)
}

// StripParenthesesForAssociativeOp clears the bracketed flag of every op
// node whose parent is also an op node. Brackets anywhere else are kept.
func (e Expression) StripParenthesesForAssociativeOp(op string) Expression {
	if len(e.Children) == 0 {
		return e
	}
	inChain := e.Type == BinaryOperator && e.Symbol == op
	children := make([]Expression, len(e.Children))
	for i, c := range e.Children {
		c = c.StripParenthesesForAssociativeOp(op)
		if inChain && c.Type == BinaryOperator && c.Symbol == op {
			c.Bracketed = false
		}
		children[i] = c
	}
	e.Children = children
	return e
}

// ContainsOperator reports whether any binary node of e carries op.
func (e Expression) ContainsOperator(op string) bool {
	if e.Type == BinaryOperator && e.Symbol == op {
		return true
	}
	for _, c := range e.Children {
		if c.ContainsOperator(op) {
			return true
		}
	}
	return false
}
