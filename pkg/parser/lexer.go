package parser

import (
	"fmt"
	"sort"
	"unicode"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
)

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenOperator
	tokenOpen
	tokenClose
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// operatorSymbols returns every non-identifier symbol the context knows,
// longest first so that multi-character operators win.
func operatorSymbols(ctx *expr.Context, extra ...string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || seen[s] || expr.IsFunctionSymbol(s) {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, s := range ctx.BinaryOperators {
		add(s)
	}
	for _, s := range ctx.UnaryOperators {
		add(s)
	}
	for _, s := range extra {
		add(s)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func tokenize(text string, ctx *expr.Context, extra ...string) ([]token, error) {
	ops := operatorSymbols(ctx, extra...)
	runes := []rune(text)
	var tokens []token
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokenOpen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenClose, text: ")", pos: i})
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			if i < len(runes) && runes[i] == '.' {
				i++
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			if !ctx.HandleNumerics {
				return nil, fmt.Errorf("%w: numeric literal %q at %d not allowed", domain.ErrParse, string(runes[start:i]), start)
			}
			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i]), pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: string(runes[start:i]), pos: start})
		default:
			matched := ""
			for _, op := range ops {
				if hasPrefixAt(runes, i, op) {
					matched = op
					break
				}
			}
			if matched == "" {
				return nil, fmt.Errorf("%w: unexpected character %q at %d", domain.ErrParse, r, i)
			}
			tokens = append(tokens, token{kind: tokenOperator, text: matched, pos: i})
			i += len([]rune(matched))
		}
	}
	return tokens, nil
}

func hasPrefixAt(runes []rune, i int, s string) bool {
	for _, r := range s {
		if i >= len(runes) || runes[i] != r {
			return false
		}
		i++
	}
	return true
}
