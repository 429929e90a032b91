package task

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
)

// Snapshot captures the full state of the task. The result shares no
// mutable data with the task.
func (t *Task) Snapshot() *domain.Snapshot {
	s := domain.NewSnapshot(t.id, t.ctx)
	for name, r := range t.rules {
		s.Rules[name] = r
	}
	if len(t.ruleLabels) > 0 {
		s.RuleLabels = maps.Clone(t.ruleLabels)
	}
	s.History = t.History()
	s.ErrorMessages = t.ErrorMessages()
	s.PrintRHSOnly = t.printRHSOnly
	if cur, ok := t.Current(); ok {
		s.Current = &cur
	}
	if tgt, ok := t.Target(); ok {
		s.Target = &tgt
	}
	s.UpdatedAt = t.now().UTC()
	return s
}

// Restore rebuilds a Task from a snapshot. Trees that violate the
// child-count invariant are rejected, as are rules, current and target that
// are not equalities.
func Restore(s *domain.Snapshot, opts ...Option) (*Task, error) {
	if s == nil {
		return nil, errors.New("restore: nil snapshot")
	}
	t := New(s.Context, append([]Option{WithID(s.ID)}, opts...)...)

	for name, r := range s.Rules {
		if err := validateEquality(r); err != nil {
			return nil, fmt.Errorf("restore rule %s: %w", name, err)
		}
		t.rules[name] = r
		if label := s.RuleLabels[name]; label != "" {
			t.ruleLabels[name] = label
		}
	}
	for i, step := range s.History {
		if err := step.Expression.Validate(); err != nil {
			return nil, fmt.Errorf("restore history entry %d: %w", i, err)
		}
	}
	t.history = append([]domain.Step(nil), s.History...)
	if s.Current != nil {
		if err := validateEquality(*s.Current); err != nil {
			return nil, fmt.Errorf("restore current: %w", err)
		}
		cur := *s.Current
		t.current = &cur
	}
	if s.Target != nil {
		if err := validateEquality(*s.Target); err != nil {
			return nil, fmt.Errorf("restore target: %w", err)
		}
		tgt := *s.Target
		t.target = &tgt
	}
	t.errorMessages = append([]string(nil), s.ErrorMessages...)
	t.printRHSOnly = s.PrintRHSOnly
	return t, nil
}

func validateEquality(e expr.Expression) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if !e.IsEquality() {
		return fmt.Errorf("%w: %s", domain.ErrNotEquality, e)
	}
	return nil
}

// DumpState writes the textual state report: history, rules, target,
// current and the diagnostic log.
func (t *Task) DumpState(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("History:\n")
	for _, step := range t.history {
		sb.WriteString("  ")
		sb.WriteString(t.statement(step.Expression))
		if step.Label != "" {
			fmt.Fprintf(&sb, " ... (%s)", step.Label)
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("Rules:\n")
	for _, name := range t.Rules() {
		fmt.Fprintf(&sb, "  %s: %s\n", name, t.rules[name])
	}

	fmt.Fprintf(&sb, "Target: %s\n", optional(t.target))
	fmt.Fprintf(&sb, "Current: %s\n", optional(t.current))

	if len(t.errorMessages) > 0 {
		sb.WriteString("Errors:\n")
		for _, msg := range t.errorMessages {
			fmt.Fprintf(&sb, "  %s\n", msg)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (t *Task) statement(e expr.Expression) string {
	if t.printRHSOnly && e.IsEquality() {
		return "= " + e.RHS().String()
	}
	return e.String()
}

func optional(e *expr.Expression) string {
	if e == nil {
		return "None"
	}
	return e.String()
}
