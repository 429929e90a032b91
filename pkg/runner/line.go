package runner

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/task"
)

// ErrEmptyLine is returned by ParseLine for blank lines and comments.
var ErrEmptyLine = errors.New("empty line")

// ParseLine turns one REPL line into a Command. Two forms are accepted:
//
//	op key=value key="quoted value" ...
//	op rest-of-line
//
// The keyword form is chosen when the first argument is key=value for a
// known Command field. Otherwise the rest of the line is read positionally:
//
//	set_current x + 3 = 5
//	set_target x = 2
//	add_rule add_zero X + 0 = X
//	apply_rule add_zero
//	apply_rule_choice add_zero 1
//	apply_rule_at add_zero [0,1]
//	apply_function f(X) X
//	swap [0,0] [0,1]
//	arith_both_sides - 3
//	calculate 5 - 3
//	calculate_at [1]
//	simplify_fraction [1]
//
// Lines starting with '#' are comments.
func ParseLine(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Command{}, ErrEmptyLine
	}
	op, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	if isKeywordForm(rest) {
		fields, err := splitQuoted(rest)
		if err != nil {
			return Command{}, err
		}
		m := map[string]any{"op": op}
		for _, f := range fields {
			key, value, ok := strings.Cut(f, "=")
			if !ok || !commandKeys[key] {
				return Command{}, fmt.Errorf("%w: expected key=value, got %q", ErrInvalidArgument, f)
			}
			m[key] = value
		}
		return DecodeCommand(m)
	}
	return parsePositional(op, rest)
}

var commandKeys = map[string]bool{
	"text": true, "name": true, "label": true, "rule": true, "function": true,
	"var": true, "value": true, "left": true, "right": true, "operator": true,
	"addr1": true, "addr2": true, "addr": true, "choice": true,
}

func isKeywordForm(rest string) bool {
	key, _, ok := strings.Cut(rest, "=")
	return ok && commandKeys[key]
}

func parsePositional(op, rest string) (Command, error) {
	cmd := Command{Op: op}
	args := strings.Fields(rest)
	switch op {
	case task.OpSetCurrent, task.OpSetTarget:
		cmd.Text = rest
	case task.OpAddRule:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("%w: usage: add_rule <name> <rule>", ErrInvalidArgument)
		}
		cmd.Name = args[0]
		cmd.Text = strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
	case task.OpApplyRule:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: usage: apply_rule <name>", ErrInvalidArgument)
		}
		cmd.Rule = args[0]
	case task.OpApplyRuleChoice:
		if len(args) != 2 {
			return Command{}, fmt.Errorf("%w: usage: apply_rule_choice <name> <index>", ErrInvalidArgument)
		}
		cmd.Rule = args[0]
		if _, err := fmt.Sscanf(args[1], "%d", &cmd.Choice); err != nil {
			return Command{}, fmt.Errorf("%w: choice %q is not a number", ErrInvalidArgument, args[1])
		}
	case task.OpApplyRuleAt:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("%w: usage: apply_rule_at <name> <addr>", ErrInvalidArgument)
		}
		addr, err := expr.ParseAddress(strings.TrimSpace(strings.TrimPrefix(rest, args[0])))
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		cmd.Rule, cmd.Addr = args[0], addr
	case task.OpApplyFunction:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("%w: usage: apply_function <function> <var>", ErrInvalidArgument)
		}
		cmd.Var = args[len(args)-1]
		cmd.Function = strings.TrimSpace(strings.TrimSuffix(rest, cmd.Var))
	case task.OpSwap:
		if len(args) != 2 {
			return Command{}, fmt.Errorf("%w: usage: swap <addr1> <addr2>", ErrInvalidArgument)
		}
		a1, err := expr.ParseAddress(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		a2, err := expr.ParseAddress(args[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		cmd.Addr1, cmd.Addr2 = a1, a2
	case task.OpArithBothSides:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("%w: usage: arith_both_sides <operator> <value>", ErrInvalidArgument)
		}
		cmd.Operator = args[0]
		cmd.Value = strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
	case task.OpCalculate:
		if len(args) != 3 {
			return Command{}, fmt.Errorf("%w: usage: calculate <left> <operator> <right>", ErrInvalidArgument)
		}
		cmd.Left, cmd.Operator, cmd.Right = args[0], args[1], args[2]
	case task.OpCalculateAt, task.OpSimplifyFraction:
		addr, err := expr.ParseAddress(rest)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		cmd.Addr = addr
	default:
		if rest != "" && slices.Contains(Ops(), op) {
			return Command{}, fmt.Errorf("%w: %s takes no positional arguments", ErrInvalidArgument, op)
		}
	}
	return cmd, nil
}

// splitQuoted splits on spaces, keeping double-quoted runs together and
// dropping the quotes.
func splitQuoted(s string) ([]string, error) {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case r == ' ' && !inQuote:
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidArgument)
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
