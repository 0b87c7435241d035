// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"optisheet/internal/processor"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"
)

// FormatColumns formats the header list printed by the columns command.
// Format: "{N:>4}  {HEADER}\n" per column, then the row count.
func FormatColumns(w io.Writer, title string, headers []string, rows int) {
	if title != "" {
		fmt.Fprintln(w, ListSeparator)
		fmt.Fprintln(w, normalizeTitle(title))
		fmt.Fprintln(w, ListSeparator)
	}
	for i, h := range headers {
		fmt.Fprintf(w, "%4d  %s\n", i+1, normalizeTitle(h))
	}
	fmt.Fprintf(w, "%d %s\n", rows, plural(rows, "row", "rows"))
}

// FormatProgress formats one progress line.
// Format: "Processing {DONE}/{TOTAL} ({W} written, {S} skipped)\n"
func FormatProgress(w io.Writer, s processor.Status) {
	fmt.Fprintf(w, "Processing %d/%d (%d written, %d skipped)\n", s.Completed, s.Total, s.Written, s.Skipped)
}

// FormatSummary formats the final line of a successful run. dest is the CSV
// output path, empty for live sheet runs.
func FormatSummary(w io.Writer, s processor.Status, dest string) {
	fmt.Fprintf(w, "ok: %d %s, %d written, %d skipped\n", s.Total, plural(s.Total, "row", "rows"), s.Written, s.Skipped)
	if dest != "" {
		fmt.Fprintf(w, "Data saved to %s\n", dest)
	}
}

// FormatSetting formats one key/value line of the config command.
// Unset values are shown as "(not set)".
func FormatSetting(w io.Writer, key, value string) {
	if strings.TrimSpace(value) == "" {
		value = "(not set)"
	}
	fmt.Fprintf(w, "%-18s %s\n", key+":", value)
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
