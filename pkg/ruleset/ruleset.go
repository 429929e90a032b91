package ruleset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/parser"
	"github.com/aretw0/equaio/pkg/ports"
	"gopkg.in/yaml.v3"
)

// ErrMissingVariable is returned by Install when the task's context does not
// declare a pattern variable the rule set relies on.
var ErrMissingVariable = errors.New("rule set variable not declared by task context")

// BaseArithmetic is the only known context base.
const BaseArithmetic = "arithmetic"

// Rule is one named rewrite rule.
type Rule struct {
	// ID is namespaced as "<set>/<id>".
	ID         string
	Label      string
	Expression expr.Expression
}

// RuleSet is a parsed rule set document.
type RuleSet struct {
	Name      string
	Variables []string
	Context   *expr.Context
	Rules     []Rule
}

// Document is the on-disk form of a rule set.
type Document struct {
	Name      string         `yaml:"name" json:"name"`
	Context   ContextRef     `yaml:"context,omitempty" json:"context,omitempty"`
	Variables []string       `yaml:"variables,omitempty" json:"variables,omitempty"`
	Rules     []RuleDocument `yaml:"rules" json:"rules"`
}

// ContextRef names the context base a rule set is parsed under. It is
// written either as a plain string or as an object:
//
//	context: arithmetic
//	context: {base: arithmetic}
type ContextRef struct {
	Base string `yaml:"base,omitempty" json:"base,omitempty"`
}

// UnmarshalYAML accepts the scalar and the mapping form.
func (c *ContextRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&c.Base)
	}
	type plain ContextRef
	return node.Decode((*plain)(c))
}

// UnmarshalJSON accepts a string, an object or null.
func (c *ContextRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		return json.Unmarshal(trimmed, &c.Base)
	}
	type plain ContextRef
	return json.Unmarshal(trimmed, (*plain)(c))
}

// MarshalYAML writes the short string form.
func (c ContextRef) MarshalYAML() (any, error) { return c.Base, nil }

// MarshalJSON writes the short string form.
func (c ContextRef) MarshalJSON() ([]byte, error) { return json.Marshal(c.Base) }

// RuleDocument is one entry of Document.Rules. Exactly one of Expr (infix)
// and ExprPrefix must be set.
type RuleDocument struct {
	ID         string `yaml:"id" json:"id"`
	Label      string `yaml:"label,omitempty" json:"label,omitempty"`
	Expr       string `yaml:"expr,omitempty" json:"expr,omitempty"`
	ExprPrefix string `yaml:"expr_prefix,omitempty" json:"expr_prefix,omitempty"`
}

// Parse decodes a YAML or JSON rule set document. Any malformed entry fails
// the whole load with an error wrapping domain.ErrParse.
func Parse(data []byte) (*RuleSet, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: rule set: %v", domain.ErrParse, err)
	}
	return FromDocument(doc)
}

// ParseJSON decodes a strict JSON rule set document.
func ParseJSON(data []byte) (*RuleSet, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: rule set: %v", domain.ErrParse, err)
	}
	return FromDocument(doc)
}

// LoadFile reads a rule set from path. A .json extension selects the JSON
// decoder; anything else is read as YAML.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(data)
	}
	return Parse(data)
}

// Load fetches and parses the named rule set from loader.
func Load(loader ports.RuleSetLoader, name string) (*RuleSet, error) {
	data, err := loader.GetRuleSet(name)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// FromDocument validates doc and parses its rules.
func FromDocument(doc Document) (*RuleSet, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: rule set has no name", domain.ErrParse)
	}
	ctx, err := resolveContext(doc.Context.Base, doc.Variables)
	if err != nil {
		return nil, err
	}

	set := &RuleSet{
		Name:      doc.Name,
		Variables: append([]string(nil), doc.Variables...),
		Context:   ctx,
		Rules:     make([]Rule, 0, len(doc.Rules)),
	}
	seen := make(map[string]bool, len(doc.Rules))
	for i, rd := range doc.Rules {
		rule, err := parseRule(doc.Name, rd, ctx)
		if err != nil {
			return nil, fmt.Errorf("rule set %s, rule %d: %w", doc.Name, i, err)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("%w: rule set %s: duplicate rule id %s", domain.ErrParse, doc.Name, rd.ID)
		}
		seen[rule.ID] = true
		set.Rules = append(set.Rules, rule)
	}
	return set, nil
}

func resolveContext(base string, variables []string) (*expr.Context, error) {
	switch base {
	case "", BaseArithmetic:
		return arithmetic.Context(variables...), nil
	}
	return nil, fmt.Errorf("%w: unknown context base %q", domain.ErrParse, base)
}

func parseRule(set string, rd RuleDocument, ctx *expr.Context) (Rule, error) {
	if rd.ID == "" {
		return Rule{}, fmt.Errorf("%w: rule has no id", domain.ErrParse)
	}

	var (
		e   expr.Expression
		err error
	)
	switch {
	case rd.Expr != "" && rd.ExprPrefix != "":
		return Rule{}, fmt.Errorf("%w: rule %s sets both expr and expr_prefix", domain.ErrParse, rd.ID)
	case rd.Expr != "":
		e, err = parser.ParseEquality(rd.Expr, ctx)
	case rd.ExprPrefix != "":
		e, err = parser.ParsePrefix(rd.ExprPrefix, ctx)
	default:
		return Rule{}, fmt.Errorf("%w: rule %s has no expression", domain.ErrParse, rd.ID)
	}
	if err != nil {
		return Rule{}, err
	}
	if !e.IsEquality() {
		return Rule{}, fmt.Errorf("%w: rule %s is not an equality: %s", domain.ErrParse, rd.ID, e)
	}
	return Rule{ID: set + "/" + rd.ID, Label: rd.Label, Expression: e}, nil
}

// Lookup finds a rule by namespaced or bare ID.
func (s *RuleSet) Lookup(id string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.ID == id || r.ID == s.Name+"/"+id {
			return r, true
		}
	}
	return Rule{}, false
}

// IDs returns the namespaced rule IDs in sorted order.
func (s *RuleSet) IDs() []string {
	ids := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return ids
}

// Map returns the rules keyed by namespaced ID, the shape task.WithRules
// takes.
func (s *RuleSet) Map() map[string]expr.Expression {
	out := make(map[string]expr.Expression, len(s.Rules))
	for _, r := range s.Rules {
		out[r.ID] = r.Expression
	}
	return out
}

// Installer is the part of a Task that Install needs.
type Installer interface {
	Context() *expr.Context
	AddLabeledRule(name string, rule expr.Expression, label string) bool
	LastError() error
}

// Install adds every rule of s to t, keeping each rule's label for the
// history entries it produces. The task's context must declare all
// variables of the set, otherwise nothing is installed.
func (s *RuleSet) Install(t Installer) error {
	ctx := t.Context()
	for _, v := range s.Variables {
		if !ctx.IsVariable(v) {
			return fmt.Errorf("%w: %s needs %s", ErrMissingVariable, s.Name, v)
		}
	}
	for _, r := range s.Rules {
		if !t.AddLabeledRule(r.ID, r.Expression, r.Label) {
			return t.LastError()
		}
	}
	return nil
}
