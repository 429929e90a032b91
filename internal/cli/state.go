package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/equaio/internal/presentation/tui"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/task"
)

// Format selects how a derivation is printed.
type Format string

const (
	FormatPlain    Format = "plain"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPlain, FormatMarkdown, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want plain, markdown or json)", s)
}

// PrintState writes the derivation in the given format. Markdown falls back
// to plain text when the renderer cannot be created.
func PrintState(w io.Writer, t *task.Task, format Format) error {
	return PrintSnapshot(w, t.Snapshot(), format)
}

// PrintSnapshot is PrintState for a stored snapshot.
func PrintSnapshot(w io.Writer, s *domain.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatMarkdown:
		render, err := tui.NewRenderer()
		if err == nil {
			var out string
			if out, err = render(tui.StateMarkdown(s)); err == nil {
				_, err = io.WriteString(w, out)
				return err
			}
		}
	}
	t, err := task.Restore(s)
	if err != nil {
		return err
	}
	return t.DumpState(w)
}
