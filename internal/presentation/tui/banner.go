package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the equaio banner and version to w, colored for the
// terminal's profile.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{"   ___  __ _ _  _ __ _ (_) ___ ", "#818cf8"},
		{"  / -_)/ _` | || / _` || |/ _ \\", "#a78bfa"},
		{"  \\___|\\__, |\\_,_\\__,_||_|\\___/", "#c084fc"},
		{"          |_|                  ", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", out.String("v"+strings.TrimSpace(version)).Faint())
}
