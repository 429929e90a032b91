package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
)

// ParsePrefix parses the prefix notation used by rule files, e.g.
// "=(+(X,0),X)". A head with one argument is a unary node and a head with two
// is a binary node. Functions declared unary may take more arguments; they
// are joined with the argument separator, nesting to the left.
func ParsePrefix(text string, ctx *expr.Context) (expr.Expression, error) {
	p := &prefixParser{text: text, runes: []rune(text), ctx: ctx}
	e, err := p.parseTerm()
	if err != nil {
		return expr.Expression{}, err
	}
	p.skipSpace()
	if p.pos < len(p.runes) {
		return expr.Expression{}, p.errorf("unexpected %q", p.runes[p.pos])
	}
	return e, nil
}

type prefixParser struct {
	text  string
	runes []rune
	pos   int
	ctx   *expr.Context
}

func (p *prefixParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d in %q", domain.ErrParse, fmt.Sprintf(format, args...), p.pos, p.text)
}

func (p *prefixParser) skipSpace() {
	for p.pos < len(p.runes) && unicode.IsSpace(p.runes[p.pos]) {
		p.pos++
	}
}

// symbol reads up to the next delimiter.
func (p *prefixParser) symbol() string {
	start := p.pos
	for p.pos < len(p.runes) {
		r := p.runes[p.pos]
		if r == '(' || r == ')' || r == ',' || unicode.IsSpace(r) {
			break
		}
		p.pos++
	}
	return string(p.runes[start:p.pos])
}

func (p *prefixParser) parseTerm() (expr.Expression, error) {
	p.skipSpace()
	sym := p.symbol()
	if sym == "" {
		return expr.Expression{}, p.errorf("missing symbol")
	}
	p.skipSpace()
	if p.pos >= len(p.runes) || p.runes[p.pos] != '(' {
		if unicode.IsDigit([]rune(sym)[0]) && !p.ctx.HandleNumerics {
			return expr.Expression{}, p.errorf("numeric literal %q not allowed", sym)
		}
		return expr.NewValue(sym), nil
	}
	p.pos++
	var args []expr.Expression
	for {
		arg, err := p.parseTerm()
		if err != nil {
			return expr.Expression{}, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.pos >= len(p.runes) {
			return expr.Expression{}, p.errorf("missing closing parenthesis")
		}
		if p.runes[p.pos] == ')' {
			p.pos++
			break
		}
		if p.runes[p.pos] != ',' {
			return expr.Expression{}, p.errorf("expected ',' or ')'")
		}
		p.pos++
	}
	return p.build(sym, args)
}

func (p *prefixParser) build(sym string, args []expr.Expression) (expr.Expression, error) {
	unary := p.ctx.IsUnaryOperator(sym)
	binary := p.ctx.IsBinaryOperator(sym) || sym == expr.EqualitySymbol
	switch {
	case len(args) == 1:
		return expr.NewUnary(sym, args[0]), nil
	case len(args) == 2 && (binary || !unary):
		return expr.NewBinary(sym, args[0], args[1]), nil
	case unary:
		joined := args[0]
		for _, a := range args[1:] {
			joined = expr.NewBinary(expr.ArgumentSeparator, joined, a)
		}
		return expr.NewUnary(sym, joined), nil
	}
	return expr.Expression{}, p.errorf("%s takes at most two arguments, got %d (%s)", sym, len(args), argList(args))
}

func argList(args []expr.Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, "; ")
}
