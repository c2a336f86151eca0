package output

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownWriter writes the report as a Markdown table.
type MarkdownWriter struct{}

// Write outputs the modification-time report as Markdown.
func (w *MarkdownWriter) Write(report *ModTimesReport, options OutputOptions) error {
	entries := report.Entries(placeholderOrDefault(options.Placeholder))

	return writeTo(options.OutputPath, func(out io.Writer) error {
		fmt.Fprintln(out, "# Last Modification Times")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
		if report.Head != "" {
			fmt.Fprintf(out, "**Head:** `%s`\n\n", report.Head)
		}
		fmt.Fprintf(out, "**Files:** %d (%d unresolved)\n\n", len(entries), len(report.Unresolved))

		fmt.Fprintln(out, "| Path | Last Modified |")
		fmt.Fprintln(out, "|------|---------------|")
		for _, e := range entries {
			fmt.Fprintf(out, "| `%s` | %s |\n", escapeMarkdownCell(e.Path), e.Timestamp)
		}
		return nil
	})
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
