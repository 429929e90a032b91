package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return nil, err
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// StateMarkdown formats a derivation as markdown: a numbered history, the
// rules, the target and current statements and the error log.
func StateMarkdown(s *domain.Snapshot) string {
	var sb strings.Builder

	sb.WriteString("## History\n\n")
	if len(s.History) == 0 {
		sb.WriteString("_empty_\n")
	}
	for i, step := range s.History {
		statement := step.Expression.String()
		if s.PrintRHSOnly && step.Expression.IsEquality() {
			statement = "= " + step.Expression.RHS().String()
		}
		fmt.Fprintf(&sb, "%d. `%s`", i+1, statement)
		if step.Label != "" {
			fmt.Fprintf(&sb, " _%s_", step.Label)
		}
		sb.WriteByte('\n')
	}

	if len(s.Rules) > 0 {
		sb.WriteString("\n## Rules\n\n")
		for _, name := range sortedKeys(s.Rules) {
			fmt.Fprintf(&sb, "- **%s**: `%s`\n", name, s.Rules[name])
		}
	}

	sb.WriteString("\n## Goal\n\n")
	fmt.Fprintf(&sb, "- Target: %s\n", code(s.Target))
	fmt.Fprintf(&sb, "- Current: %s\n", code(s.Current))

	if len(s.ErrorMessages) > 0 {
		sb.WriteString("\n## Errors\n\n")
		for _, msg := range s.ErrorMessages {
			fmt.Fprintf(&sb, "- %s\n", msg)
		}
	}
	return sb.String()
}
