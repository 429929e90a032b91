// Package display lays an expression out as a tree of blocks for front ends.
//
// Render never holds on to the expression: every block carries the address
// of the node it came from, valid for the tree that was rendered.
package display

import (
	"fmt"
	"strings"

	"github.com/aretw0/equaio/pkg/expr"
)

// Kind tags a block.
type Kind int

const (
	Container Kind = iota
	Symbol
	Fraction
)

func (k Kind) String() string {
	switch k {
	case Container:
		return "container"
	case Symbol:
		return "symbol"
	case Fraction:
		return "fraction"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Block is one display element. Symbol blocks have Text; containers and
// fractions have Children (a fraction has exactly a numerator and a
// denominator container).
type Block struct {
	Kind     Kind         `json:"kind"`
	Text     string       `json:"text,omitempty"`
	Address  expr.Address `json:"address"`
	Left     expr.Address `json:"left"`
	Right    expr.Address `json:"right"`
	Children []Block      `json:"children,omitempty"`
}

// Render builds the block tree of e.
func Render(e expr.Expression) Block {
	root := Block{Kind: Container, Address: expr.Root, Children: flatten(e, expr.Root)}
	annotate(&root)
	return root
}

func symbol(text string, addr expr.Address) Block {
	return Block{Kind: Symbol, Text: text, Address: addr}
}

func container(addr expr.Address, children []Block) Block {
	return Block{Kind: Container, Address: addr, Children: children}
}

// flatten returns the blocks of e to be spliced into the parent container.
func flatten(e expr.Expression, addr expr.Address) []Block {
	var out []Block
	switch e.Type {
	case expr.Value:
		out = []Block{symbol(e.Symbol, addr)}
	case expr.UnaryOperator:
		inner := flatten(e.Children[0], addr.Child(0))
		out = append(out, symbol(e.Symbol, addr))
		if expr.IsFunctionSymbol(e.Symbol) {
			out = append(out, symbol("(", addr))
			out = append(out, inner...)
			out = append(out, symbol(")", addr))
		} else {
			out = append(out, inner...)
		}
	case expr.BinaryOperator:
		left := flatten(e.Children[0], addr.Child(0))
		right := flatten(e.Children[1], addr.Child(1))
		if e.Symbol == "/" {
			out = []Block{{
				Kind:    Fraction,
				Address: addr,
				Children: []Block{
					container(addr.Child(0), left),
					container(addr.Child(1), right),
				},
			}}
			break
		}
		out = append(out, left...)
		out = append(out, symbol(e.Symbol, addr))
		out = append(out, right...)
	}
	if e.Bracketed {
		wrapped := make([]Block, 0, len(out)+2)
		wrapped = append(wrapped, symbol("(", addr))
		wrapped = append(wrapped, out...)
		out = append(wrapped, symbol(")", addr))
	}
	return out
}

// annotate records neighbour addresses on every symbol block.
func annotate(b *Block) {
	for i := range b.Children {
		child := &b.Children[i]
		if child.Kind == Symbol {
			if i > 0 {
				child.Left = b.Children[i-1].Address
			}
			if i+1 < len(b.Children) {
				child.Right = b.Children[i+1].Address
			}
			continue
		}
		annotate(child)
	}
}

// String is a flat debugging form, with fractions as {num}/{den}.
func (b Block) String() string {
	switch b.Kind {
	case Symbol:
		return b.Text
	case Fraction:
		if len(b.Children) != 2 {
			return "{?}"
		}
		return "{" + b.Children[0].String() + "}/{" + b.Children[1].String() + "}"
	}
	var sb strings.Builder
	for i, c := range b.Children {
		s := c.String()
		if i > 0 && !isOpen(b.Children[i-1]) && !isClose(c) {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func isOpen(b Block) bool  { return b.Kind == Symbol && b.Text == "(" }
func isClose(b Block) bool { return b.Kind == Symbol && b.Text == ")" }

// Symbols lists the symbol blocks of the tree in reading order.
func (b Block) Symbols() []Block {
	if b.Kind == Symbol {
		return []Block{b}
	}
	var out []Block
	for _, c := range b.Children {
		out = append(out, c.Symbols()...)
	}
	return out
}
