// Package parser turns statement and expression text into expression trees.
//
// Two notations are supported: infix text as typed by a user
// ("2 * x + 1 = 5") and the prefix form used in rule files ("=(+(X,0),X)").
// Both fail with an error wrapping domain.ErrParse and never return a
// partially built tree.
package parser

import (
	"fmt"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
)

const (
	precSeparator = 1
	precStatement = 2
	precAdditive  = 3
	precMultiply  = 4
	precUnary     = 5
	precPower     = 6
)

// Precedence returns the binding strength of a binary symbol. Symbols with
// no entry bind like addition.
func Precedence(symbol string) int {
	switch symbol {
	case expr.ArgumentSeparator:
		return precSeparator
	case expr.EqualitySymbol:
		return precStatement
	case "+", "-":
		return precAdditive
	case "*", "/":
		return precMultiply
	case "^":
		return precPower
	}
	return precAdditive
}

func rightAssociative(symbol string) bool { return symbol == "^" }

// ParseExpression parses infix text using the operators declared in ctx.
func ParseExpression(text string, ctx *expr.Context) (expr.Expression, error) {
	tokens, err := tokenize(text, ctx)
	if err != nil {
		return expr.Expression{}, err
	}
	return parseTokens(text, tokens, ctx)
}

// ParseStatement parses "lhs infix rhs" where infix occurs exactly once at
// the top level, e.g. an equality with infix "=".
func ParseStatement(text, infix string, ctx *expr.Context) (expr.Expression, error) {
	tokens, err := tokenize(text, ctx, infix)
	if err != nil {
		return expr.Expression{}, err
	}
	split := -1
	depth := 0
	for i, tok := range tokens {
		switch tok.kind {
		case tokenOpen:
			depth++
		case tokenClose:
			depth--
		case tokenOperator:
			if depth != 0 || tok.text != infix {
				continue
			}
			if split >= 0 {
				return expr.Expression{}, fmt.Errorf("%w: %q appears more than once in %q", domain.ErrParse, infix, text)
			}
			split = i
		}
	}
	if split < 0 {
		return expr.Expression{}, fmt.Errorf("%w: %q is not a statement with %q", domain.ErrParse, text, infix)
	}
	lhs, err := parseTokens(text, tokens[:split], ctx)
	if err != nil {
		return expr.Expression{}, err
	}
	rhs, err := parseTokens(text, tokens[split+1:], ctx)
	if err != nil {
		return expr.Expression{}, err
	}
	return expr.NewBinary(infix, lhs, rhs), nil
}

// ParseEquality is ParseStatement with the equality symbol.
func ParseEquality(text string, ctx *expr.Context) (expr.Expression, error) {
	return ParseStatement(text, expr.EqualitySymbol, ctx)
}

// MustParseEquality panics on error. Meant for fixtures and tests.
func MustParseEquality(text string, ctx *expr.Context) expr.Expression {
	e, err := ParseEquality(text, ctx)
	if err != nil {
		panic(err)
	}
	return e
}

// MustParseExpression panics on error. Meant for fixtures and tests.
func MustParseExpression(text string, ctx *expr.Context) expr.Expression {
	e, err := ParseExpression(text, ctx)
	if err != nil {
		panic(err)
	}
	return e
}

type infixParser struct {
	text   string
	tokens []token
	pos    int
	ctx    *expr.Context
}

func parseTokens(text string, tokens []token, ctx *expr.Context) (expr.Expression, error) {
	if len(tokens) == 0 {
		return expr.Expression{}, fmt.Errorf("%w: empty expression in %q", domain.ErrParse, text)
	}
	p := &infixParser{text: text, tokens: tokens, ctx: ctx}
	e, err := p.parseBinary(0)
	if err != nil {
		return expr.Expression{}, err
	}
	if p.pos < len(p.tokens) {
		return expr.Expression{}, p.errorf("unexpected %q", p.tokens[p.pos].text)
	}
	return e, nil
}

func (p *infixParser) errorf(format string, args ...any) error {
	at := len(p.text)
	if p.pos < len(p.tokens) {
		at = p.tokens[p.pos].pos
	}
	return fmt.Errorf("%w: %s at %d in %q", domain.ErrParse, fmt.Sprintf(format, args...), at, p.text)
}

func (p *infixParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *infixParser) next() (token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *infixParser) parseBinary(minPrec int) (expr.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return expr.Expression{}, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOperator || !p.ctx.IsBinaryOperator(tok.text) {
			return left, nil
		}
		prec := Precedence(tok.text)
		if prec < minPrec {
			return left, nil
		}
		p.pos++
		nextMin := prec + 1
		if rightAssociative(tok.text) {
			nextMin = prec
		}
		right, err := p.parseBinary(nextMin)
		if err != nil {
			return expr.Expression{}, err
		}
		left = expr.NewBinary(tok.text, left, right)
	}
}

func (p *infixParser) parseUnary() (expr.Expression, error) {
	tok, ok := p.next()
	if !ok {
		return expr.Expression{}, p.errorf("missing operand")
	}
	switch tok.kind {
	case tokenNumber:
		return expr.NewValue(tok.text), nil
	case tokenIdent:
		if !p.ctx.IsUnaryOperator(tok.text) {
			return expr.NewValue(tok.text), nil
		}
		open, ok := p.next()
		if !ok || open.kind != tokenOpen {
			p.pos--
			return expr.Expression{}, p.errorf("function %s needs an argument list", tok.text)
		}
		arg, err := p.parseGroup()
		if err != nil {
			return expr.Expression{}, err
		}
		return expr.NewUnary(tok.text, arg), nil
	case tokenOperator:
		if !p.ctx.IsUnaryOperator(tok.text) {
			p.pos--
			return expr.Expression{}, p.errorf("unexpected operator %q", tok.text)
		}
		operand, err := p.parseBinary(precUnary)
		if err != nil {
			return expr.Expression{}, err
		}
		return expr.NewUnary(tok.text, operand), nil
	case tokenOpen:
		inner, err := p.parseGroup()
		if err != nil {
			return expr.Expression{}, err
		}
		return inner.WithBracket(true), nil
	}
	p.pos--
	return expr.Expression{}, p.errorf("unexpected %q", tok.text)
}

// parseGroup parses up to and including the closing parenthesis.
func (p *infixParser) parseGroup() (expr.Expression, error) {
	inner, err := p.parseBinary(0)
	if err != nil {
		return expr.Expression{}, err
	}
	tok, ok := p.next()
	if !ok || tok.kind != tokenClose {
		if ok {
			p.pos--
		}
		return expr.Expression{}, p.errorf("missing closing parenthesis")
	}
	return inner, nil
}
