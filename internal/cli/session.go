package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/equaio/pkg/ruleset"
)

// ListSessions prints one stored session ID per line.
func ListSessions(ctx context.Context, b *Backend, out io.Writer) error {
	ids, err := b.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No active sessions found.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

// InspectSession prints a stored derivation.
func InspectSession(ctx context.Context, b *Backend, id string, format Format, out io.Writer) error {
	snapshot, err := b.Store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return PrintSnapshot(out, snapshot, format)
}

// RemoveSession deletes a stored derivation.
func RemoveSession(ctx context.Context, b *Backend, id string) error {
	if _, err := b.Store.Load(ctx, id); err != nil {
		return fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return b.Store.Delete(ctx, id)
}

// PrintRuleSet lists a rule set as "id: rule  # label".
func PrintRuleSet(out io.Writer, set *ruleset.RuleSet) {
	fmt.Fprintf(out, "%s (%d rules)\n", set.Name, len(set.Rules))
	for _, r := range set.Rules {
		fmt.Fprintf(out, "  %s: %s", r.ID, r.Expression)
		if r.Label != "" {
			fmt.Fprintf(out, "  # %s", r.Label)
		}
		fmt.Fprintln(out)
	}
}
