package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/aretw0/equaio/pkg/expr"
)

// Step is one history entry: the statement a successful operation produced
// and its label. The label may be empty.
type Step struct {
	Expression expr.Expression `json:"expression"`
	Label      string          `json:"label,omitempty"`
}

// Snapshot is the serializable form of a derivation. It carries everything
// needed to rebuild a Task, including the diagnostic log.
type Snapshot struct {
	// ID identifies the session the snapshot belongs to. It may be empty for
	// derivations that are never stored.
	ID string `json:"id,omitempty"`

	Context *expr.Context              `json:"context"`
	Rules   map[string]expr.Expression `json:"rules,omitempty"`

	// RuleLabels holds the display label of each labelled rule.
	RuleLabels map[string]string `json:"rule_labels,omitempty"`
	History    []Step            `json:"history,omitempty"`

	// Current and Target are nil while unset.
	Current *expr.Expression `json:"current,omitempty"`
	Target  *expr.Expression `json:"target,omitempty"`

	ErrorMessages []string `json:"error_messages,omitempty"`
	PrintRHSOnly  bool     `json:"print_rhs_only,omitempty"`

	// Sealed holds an encrypted copy of the whole snapshot when the store
	// is wrapped by an encrypting middleware. The other fields are then
	// empty apart from ID, Context and UpdatedAt.
	Sealed []byte `json:"sealed,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot for a context.
func NewSnapshot(id string, ctx *expr.Context) *Snapshot {
	return &Snapshot{
		ID:      id,
		Context: ctx.Clone(),
		Rules:   make(map[string]expr.Expression),
	}
}

// Clone returns a copy whose slices and maps are not shared with s.
// Expressions are immutable and need no copying.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Context = s.Context.Clone()
	out.Rules = make(map[string]expr.Expression, len(s.Rules))
	for k, v := range s.Rules {
		out.Rules[k] = v
	}
	out.RuleLabels = maps.Clone(s.RuleLabels)
	out.History = slices.Clone(s.History)
	out.ErrorMessages = slices.Clone(s.ErrorMessages)
	out.Sealed = slices.Clone(s.Sealed)
	if s.Current != nil {
		c := *s.Current
		out.Current = &c
	}
	if s.Target != nil {
		t := *s.Target
		out.Target = &t
	}
	return &out
}
