package runner

import (
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/ports"
	"github.com/aretw0/equaio/pkg/ruleset"
	"github.com/aretw0/equaio/pkg/task"
	"gopkg.in/yaml.v3"
)

// Script is a derivation written down as YAML (or JSON):
//
//	variables: [X]
//	rulesets: [algebra]
//	rules:
//	  cancel: "(X + 3) - 3 = X"
//	steps:
//	  - {op: set_current, text: "x + 3 = 5"}
//	  - {op: arith_both_sides, operator: subtract, value: "3"}
//	  - {op: apply_rule, rule: cancel}
//	  - {op: calculate_at, addr: "[1]"}
type Script struct {
	Variables    []string          `yaml:"variables,omitempty" json:"variables,omitempty"`
	Rulesets     []string          `yaml:"rulesets,omitempty" json:"rulesets,omitempty"`
	Rules        map[string]string `yaml:"rules,omitempty" json:"rules,omitempty"`
	PrintRHSOnly bool              `yaml:"print_rhs_only,omitempty" json:"print_rhs_only,omitempty"`
	Steps        []Command         `yaml:"-" json:"steps"`
}

// UnmarshalYAML decodes steps through DecodeCommand, so addresses may be
// written either as lists or as "[0,1]" strings.
func (s *Script) UnmarshalYAML(node *yaml.Node) error {
	type plain Script
	var raw struct {
		plain `yaml:",inline"`
		Steps []map[string]any `yaml:"steps"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*s = Script(raw.plain)
	s.Steps = make([]Command, 0, len(raw.Steps))
	for i, m := range raw.Steps {
		cmd, err := DecodeCommand(m)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		s.Steps = append(s.Steps, cmd)
	}
	return nil
}

// ParseScript decodes a YAML or JSON script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &s, nil
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// StepError reports the script step that failed.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// NewTask builds the task the script runs on: an arithmetic context over the
// script's and the rule sets' variables, with every rule set and rule
// installed. The built-in algebra set needs no loader; other sets are read
// from loader.
func (s *Script) NewTask(loader ports.RuleSetLoader, opts ...task.Option) (*task.Task, error) {
	sets := make([]*ruleset.RuleSet, 0, len(s.Rulesets))
	vars := append([]string(nil), s.Variables...)
	for _, name := range s.Rulesets {
		set, err := resolveRuleSet(loader, name)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
		vars = append(vars, set.Variables...)
	}

	t := task.New(arithmetic.Context().WithVariables(vars...), opts...)
	for _, set := range sets {
		if err := set.Install(t); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(s.Rules))
	for name := range s.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !t.AddRuleEq(name, s.Rules[name]) {
			return nil, t.LastError()
		}
	}
	t.SetPrintRHSOnly(s.PrintRHSOnly)
	return t, nil
}

func resolveRuleSet(loader ports.RuleSetLoader, name string) (*ruleset.RuleSet, error) {
	if builtin := ruleset.Builtin(); name == builtin.Name {
		return builtin, nil
	}
	if loader == nil {
		return nil, fmt.Errorf("%w: rule set %s: no loader configured", domain.ErrRuleNotDefined, name)
	}
	return ruleset.Load(loader, name)
}

// Run executes the steps in order and stops at the first failure, which
// is returned as a *StepError.
func (s *Script) Run(t *task.Task) error {
	for i, cmd := range s.Steps {
		if err := Execute(t, cmd); err != nil {
			return &StepError{Index: i, Op: cmd.Op, Err: err}
		}
	}
	return nil
}
