package task

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/equaio/internal/logging"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
)

// Operation names, shared with the runner and the metrics labels.
const (
	OpSetCurrent        = "set_current"
	OpSetTarget         = "set_target"
	OpAddRule           = "add_rule"
	OpInitFromTarget    = "init_from_target"
	OpApplyFunction     = "apply_function"
	OpApplyRule         = "apply_rule"
	OpApplyRuleChoice   = "apply_rule_choice"
	OpApplyRuleAt       = "apply_rule_at"
	OpSwap              = "swap"
	OpArithBothSides    = "arith_both_sides"
	OpCalculate         = "calculate"
	OpCalculateAt       = "calculate_at"
	OpSimplifyFraction  = "simplify_fraction"
	OpSubToAdd          = "sub_to_add"
	OpAddToSub          = "add_to_sub"
	OpDivToMul          = "div_to_mul"
	OpMulToDiv          = "mul_to_div"
	OpRemoveAssocParens = "remove_assoc_parens"
)

// Task is the derivation state machine. It is not safe for concurrent use;
// the session manager serializes access per session.
type Task struct {
	id  string
	ctx *expr.Context

	rules         map[string]expr.Expression
	ruleLabels    map[string]string
	history       []domain.Step
	current       *expr.Expression
	target        *expr.Expression
	errorMessages []string
	printRHSOnly  bool

	lastErr   *domain.OperationError
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	normalize Normalizer
	now       func() time.Time
}

// Option configures a Task.
type Option func(*Task)

// Normalizer maps every statement a derivation step produces to a canonical
// form before it is recorded. See arithmetic.NormalizeAlgebra.
type Normalizer func(expr.Expression, *expr.Context) expr.Expression

// WithNormalizer installs n on every derivation step. Statements set
// directly with SetCurrentEq are recorded as given.
func WithNormalizer(n Normalizer) Option {
	return func(t *Task) {
		t.normalize = n
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Task) {
		t.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Task) {
		t.hooks = hooks
	}
}

// WithRules preloads named rules.
func WithRules(rules map[string]expr.Expression) Option {
	return func(t *Task) {
		for name, r := range rules {
			t.rules[name] = r
		}
	}
}

// WithID tags the task with the session it belongs to.
func WithID(id string) Option {
	return func(t *Task) {
		t.id = id
	}
}

// New creates a Task with current and target unset. The context is copied,
// so later changes by the caller do not leak in.
func New(ctx *expr.Context, opts ...Option) *Task {
	t := &Task{
		ctx:        ctx.Clone(),
		rules:      make(map[string]expr.Expression),
		ruleLabels: make(map[string]string),
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	return t
}

// ID returns the session ID, empty for an untracked task.
func (t *Task) ID() string { return t.id }

// Context returns the task's context. Callers must not modify it.
func (t *Task) Context() *expr.Context { return t.ctx }

// Current returns the statement being transformed.
func (t *Task) Current() (expr.Expression, bool) {
	if t.current == nil {
		return expr.Expression{}, false
	}
	return *t.current, true
}

// Target returns the goal statement.
func (t *Task) Target() (expr.Expression, bool) {
	if t.target == nil {
		return expr.Expression{}, false
	}
	return *t.target, true
}

// TargetReached reports whether current and target are both set and equal.
func (t *Task) TargetReached() bool {
	return t.current != nil && t.target != nil && t.current.Equal(*t.target)
}

// Rules returns the rule names in sorted order.
func (t *Task) Rules() []string {
	names := make([]string, 0, len(t.rules))
	for name := range t.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rule looks a rule up by name.
func (t *Task) Rule(name string) (expr.Expression, bool) {
	r, ok := t.rules[name]
	return r, ok
}

// RuleLabel returns the display label stored with a rule, empty if none.
func (t *Task) RuleLabel(name string) string { return t.ruleLabels[name] }

// History returns a copy of the derivation transcript.
func (t *Task) History() []domain.Step {
	return append([]domain.Step(nil), t.history...)
}

// ErrorMessages returns a copy of the diagnostic log.
func (t *Task) ErrorMessages() []string {
	return append([]string(nil), t.errorMessages...)
}

// LastError returns the failure of the most recent operation, or nil if it
// succeeded. The error matches its domain sentinel with errors.Is.
func (t *Task) LastError() error {
	if t.lastErr == nil {
		return nil
	}
	return t.lastErr
}

// SetPrintRHSOnly switches the state dump to print only right-hand sides.
func (t *Task) SetPrintRHSOnly(v bool) { t.printRHSOnly = v }

// PrintRHSOnly reports the display flag.
func (t *Task) PrintRHSOnly() bool { return t.printRHSOnly }

// commit makes e the current statement and records the step.
func (t *Task) commit(op, label string, e expr.Expression) bool {
	t.current = &e
	t.history = append(t.history, domain.Step{Expression: e, Label: label})
	t.lastErr = nil

	t.logger.Debug("step committed", "op", op, "label", label, "history_len", len(t.history))
	if t.hooks.OnStep != nil {
		t.hooks.OnStep(&domain.StepEvent{
			Timestamp:  t.now(),
			Op:         op,
			Label:      label,
			Expression: e,
			HistoryLen: len(t.history),
		})
	}
	return true
}

// commitChange normalizes next and commits it, unless the step leaves
// current as it was.
func (t *Task) commitChange(op, label string, cur, next expr.Expression, nothing string) bool {
	if t.normalize != nil {
		next = t.normalize(next, t.ctx)
	}
	if next.Equal(cur) {
		return t.fail(op, domain.ErrNoMatch, nothing)
	}
	return t.commit(op, label, next)
}

// succeed clears the last error for operations that leave history alone.
func (t *Task) succeed(op string) bool {
	t.lastErr = nil
	t.logger.Debug("operation succeeded", "op", op)
	return true
}

// fail records a recoverable failure. Only the diagnostic log changes.
func (t *Task) fail(op string, kind error, message string) bool {
	t.errorMessages = append(t.errorMessages, message)
	t.lastErr = &domain.OperationError{Op: op, Kind: kind, Message: message}

	t.logger.Debug("operation failed", "op", op, "err", t.lastErr)
	if t.hooks.OnFailure != nil {
		t.hooks.OnFailure(&domain.FailureEvent{
			Timestamp: t.now(),
			Op:        op,
			Err:       t.lastErr,
			Message:   message,
		})
	}
	return false
}

// failErr records err, keeping its sentinel when it wraps one of ours.
func (t *Task) failErr(op string, fallback error, err error) bool {
	kind := fallback
	for _, sentinel := range []error{domain.ErrParse, domain.ErrCalculation, domain.ErrNoMatch} {
		if errors.Is(err, sentinel) {
			kind = sentinel
			break
		}
	}
	return t.fail(op, kind, err.Error())
}

// requireEquality returns the current statement when it is set and is an
// equality, recording the failure otherwise.
func (t *Task) requireEquality(op string) (expr.Expression, bool) {
	if t.current == nil {
		return expr.Expression{}, t.fail(op, domain.ErrCurrentNotSet, domain.ErrCurrentNotSet.Error())
	}
	if !t.current.IsEquality() {
		return expr.Expression{}, t.fail(op, domain.ErrNotEquality, domain.ErrNotEquality.Error())
	}
	return *t.current, true
}
