package runner

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/task"
	"github.com/mitchellh/mapstructure"
)

// ErrInvalidArgument is returned when a command carries an argument that
// cannot be interpreted, before the task is touched.
var ErrInvalidArgument = errors.New("invalid command argument")

// Command is one Task operation expressed as data. Only the fields the
// operation reads need to be set.
type Command struct {
	Op string `json:"op" yaml:"op" mapstructure:"op"`

	// Text is the statement for set_current, set_target and add_rule.
	Text string `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
	// Name is the rule name for add_rule.
	Name  string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	// Rule names a stored rule for apply_rule, apply_rule_choice and
	// apply_rule_at.
	Rule string `json:"rule,omitempty" yaml:"rule,omitempty" mapstructure:"rule"`

	Function string `json:"function,omitempty" yaml:"function,omitempty" mapstructure:"function"`
	Var      string `json:"var,omitempty" yaml:"var,omitempty" mapstructure:"var"`

	// Value and Operator drive arith_both_sides; Left, Right and Operator
	// drive calculate. Operator is a symbol ("-") or a name ("subtract").
	Value    string `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Left     string `json:"left,omitempty" yaml:"left,omitempty" mapstructure:"left"`
	Right    string `json:"right,omitempty" yaml:"right,omitempty" mapstructure:"right"`
	Operator string `json:"operator,omitempty" yaml:"operator,omitempty" mapstructure:"operator"`

	Addr1 expr.Address `json:"addr1,omitempty" yaml:"addr1,omitempty" mapstructure:"addr1"`
	Addr2 expr.Address `json:"addr2,omitempty" yaml:"addr2,omitempty" mapstructure:"addr2"`
	Addr  expr.Address `json:"addr,omitempty" yaml:"addr,omitempty" mapstructure:"addr"`

	Choice int `json:"choice,omitempty" yaml:"choice,omitempty" mapstructure:"choice"`
}

var addressType = reflect.TypeOf(expr.Address{})

// addressHook lets addresses arrive as "[0,1]" strings.
func addressHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != addressType {
		return data, nil
	}
	return expr.ParseAddress(data.(string))
}

// DecodeCommand converts a free-form map, e.g. decoded JSON or REPL
// key=value pairs, into a Command. Numbers and addresses may be given as
// strings.
func DecodeCommand(m map[string]any) (Command, error) {
	var cmd Command
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       addressHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cmd,
	})
	if err != nil {
		return Command{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return cmd, nil
}

// Ops lists every operation Execute understands.
func Ops() []string {
	return []string{
		task.OpSetCurrent, task.OpSetTarget, task.OpAddRule, task.OpInitFromTarget,
		task.OpApplyFunction, task.OpApplyRule, task.OpApplyRuleChoice, task.OpApplyRuleAt, task.OpSwap,
		task.OpArithBothSides, task.OpCalculate, task.OpCalculateAt, task.OpSimplifyFraction,
		task.OpSubToAdd, task.OpAddToSub, task.OpDivToMul, task.OpMulToDiv,
		task.OpRemoveAssocParens,
	}
}

// Execute runs cmd against t. It returns nil on success, the task's
// LastError when the operation failed, and domain.ErrUnknownCommand for an
// unrecognised op.
func Execute(t *task.Task, cmd Command) error {
	var ok bool
	switch cmd.Op {
	case task.OpSetCurrent:
		ok = t.SetCurrentEq(cmd.Text)
	case task.OpSetTarget:
		ok = t.SetTargetEq(cmd.Text)
	case task.OpAddRule:
		ok = t.AddRuleEq(cmd.Name, cmd.Text)
	case task.OpInitFromTarget:
		ok = t.InitCurrentWithTargetLHS()
	case task.OpApplyFunction:
		ok = t.ApplyFunctionToBothSide(cmd.Function, cmd.Var, cmd.Label)
	case task.OpApplyRule:
		ok = t.ApplyRule(cmd.Rule, cmd.Label)
	case task.OpApplyRuleChoice:
		ok = t.ApplyRuleChoice(cmd.Rule, cmd.Choice, cmd.Label)
	case task.OpApplyRuleAt:
		ok = t.ApplyRuleAt(cmd.Rule, cmd.Addr, cmd.Label)
	case task.OpSwap:
		ok = t.TrySwapTwoElement(cmd.Addr1, cmd.Addr2, cmd.Label)
	case task.OpArithBothSides:
		op, err := arithmetic.ParseOperator(cmd.Operator)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		ok = t.ApplyArithmeticToBothSide(op, cmd.Value, cmd.Label)
	case task.OpCalculate:
		op, err := arithmetic.ParseOperator(cmd.Operator)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		ok = t.ApplyArithmeticCalculation(cmd.Left, cmd.Right, op, cmd.Label)
	case task.OpCalculateAt:
		ok = t.ApplyArithmeticCalculationAt(cmd.Addr, cmd.Label)
	case task.OpSimplifyFraction:
		ok = t.ApplyArithmeticSimplifyFraction(cmd.Addr, cmd.Label)
	case task.OpSubToAdd:
		ok = t.TurnSubtractionToAddition()
	case task.OpAddToSub:
		ok = t.TurnAdditionToSubtraction()
	case task.OpDivToMul:
		ok = t.TurnDivisionToMultiplication()
	case task.OpMulToDiv:
		ok = t.TurnMultiplicationToDivision()
	case task.OpRemoveAssocParens:
		ok = t.RemoveAssocParentheses()
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd.Op)
	}
	if !ok {
		return t.LastError()
	}
	return nil
}
