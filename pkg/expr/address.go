package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Address is the path of child indices from the root to a node. The empty
// address is the root. An address is only meaningful for the tree it was
// computed against.
type Address []int

// Root is the empty address.
var Root = Address{}

// Child returns a new address one level below a.
func (a Address) Child(index int) Address {
	out := make(Address, len(a), len(a)+1)
	copy(out, a)
	return append(out, index)
}

// Parent returns the address of a's parent. The root has no parent and
// panics.
func (a Address) Parent() Address {
	if len(a) == 0 {
		panic("expr: root address has no parent")
	}
	out := make(Address, len(a)-1)
	copy(out, a[:len(a)-1])
	return out
}

// IsRoot reports whether a is the empty address.
func (a Address) IsRoot() bool { return len(a) == 0 }

// Equal compares two addresses index by index.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether p is an ancestor-or-self path of a.
func (a Address) HasPrefix(p Address) bool {
	if len(p) > len(a) {
		return false
	}
	return a[:len(p)].Equal(p)
}

func (a Address) String() string {
	parts := make([]string, len(a))
	for i, idx := range a {
		parts[i] = strconv.Itoa(idx)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParseAddress reads the form produced by String, e.g. "[0,1]". Bare
// comma-separated indices are accepted as well.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return Address{}, nil
	}
	parts := strings.Split(s, ",")
	out := make(Address, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid address index %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// Has reports whether addr resolves within e.
func (e Expression) Has(addr Address) bool {
	node := e
	for _, idx := range addr {
		if idx < 0 || idx >= len(node.Children) {
			return false
		}
		node = node.Children[idx]
	}
	return true
}

// At returns the subtree at addr. An address that does not resolve is a
// contract violation and panics.
func (e Expression) At(addr Address) Expression {
	node := e
	for depth, idx := range addr {
		if idx < 0 || idx >= len(node.Children) {
			panic(fmt.Sprintf("expr: address %v out of range at depth %d (node %q has %d children)", addr, depth, node.Symbol, len(node.Children)))
		}
		node = node.Children[idx]
	}
	return node
}

// Replace returns a tree identical to e except that the subtree at addr is r.
// Only the nodes on the path are rebuilt.
func (e Expression) Replace(addr Address, r Expression) Expression {
	if len(addr) == 0 {
		return r
	}
	idx := addr[0]
	if idx < 0 || idx >= len(e.Children) {
		panic(fmt.Sprintf("expr: address %v out of range (node %q has %d children)", addr, e.Symbol, len(e.Children)))
	}
	children := make([]Expression, len(e.Children))
	copy(children, e.Children)
	children[idx] = e.Children[idx].Replace(addr[1:], r)
	e.Children = children
	return e
}

// AllAddresses lists every node's address in pre-order: root first, then
// children left to right. Rule application depends on this order.
func (e Expression) AllAddresses() []Address {
	var out []Address
	e.walk(Address{}, func(addr Address, _ Expression) {
		out = append(out, addr)
	})
	return out
}

func (e Expression) walk(addr Address, fn func(Address, Expression)) {
	fn(addr, e)
	for i, c := range e.Children {
		c.walk(addr.Child(i), fn)
	}
}
