package domain

import "github.com/aretw0/equaio/pkg/expr"

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// ID is always present to identify the target.
	ID string `json:"id"`

	// Current is set when the current statement changed.
	Current *expr.Expression `json:"current,omitempty"`

	// Target is set when the target statement changed.
	Target *expr.Expression `json:"target,omitempty"`

	// History holds the entries appended since the old snapshot.
	History *HistoryDelta `json:"history,omitempty"`

	// Errors holds the diagnostic messages appended since the old snapshot.
	Errors []string `json:"errors,omitempty"`

	// RulesAdded lists rule names that are new or redefined.
	RulesAdded []string `json:"rules_added,omitempty"`
}

// HistoryDelta represents entries appended to the history.
type HistoryDelta struct {
	Appended []Step `json:"appended"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil {
		oldSnap = &Snapshot{}
	}

	diff := &SnapshotDiff{ID: newSnap.ID}

	if !sameExpression(oldSnap.Current, newSnap.Current) {
		diff.Current = newSnap.Current
	}
	if !sameExpression(oldSnap.Target, newSnap.Target) {
		diff.Target = newSnap.Target
	}

	// History and the error log are append-only.
	if n := len(oldSnap.History); len(newSnap.History) > n {
		diff.History = &HistoryDelta{Appended: newSnap.History[n:]}
	}
	if n := len(oldSnap.ErrorMessages); len(newSnap.ErrorMessages) > n {
		diff.Errors = newSnap.ErrorMessages[n:]
	}

	for name, rule := range newSnap.Rules {
		old, ok := oldSnap.Rules[name]
		if !ok || !old.Equal(rule) {
			diff.RulesAdded = append(diff.RulesAdded, name)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func sameExpression(a, b *expr.Expression) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Current == nil &&
		d.Target == nil &&
		d.History == nil &&
		len(d.Errors) == 0 &&
		len(d.RulesAdded) == 0
}
