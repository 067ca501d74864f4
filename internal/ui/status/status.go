// Package status renders run outcomes for the terminal.
package status

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/qperformance/internal/pipeline"
	"github.com/abhisek/qperformance/internal/ui/theme"
)

// Lines returns the styled lines for out: the status line, then, when
// there are warnings, a blank line, a header and one line per warning.
func Lines(out pipeline.Outcome) []string {
	style := theme.StatusFailed
	if out.OK() {
		style = theme.StatusOK
	}

	lines := []string{theme.Label.Render("Status:") + " " + style.Render(out.Status)}
	if len(out.Warnings) == 0 {
		return lines
	}

	lines = append(lines, "", theme.WarningHeader.Render("Warnings:"))
	for _, w := range out.Warnings {
		lines = append(lines, theme.WarningItem.Render(w))
	}
	return lines
}

// Render writes out to w, downsampling colors to what w supports.
func Render(w io.Writer, out pipeline.Outcome) error {
	_, err := lipgloss.Fprintln(w, strings.Join(Lines(out), "\n"))
	return err
}

// Plain renders out without styling.
func Plain(out pipeline.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", out.Status)
	if len(out.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range out.Warnings {
			b.WriteString(w)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
