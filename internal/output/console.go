package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ConsoleWriter writes the report as a table for terminals.
type ConsoleWriter struct{}

// Write outputs the modification-time report to the console.
func (w *ConsoleWriter) Write(report *ModTimesReport, options OutputOptions) error {
	entries := report.Entries(placeholderOrDefault(options.Placeholder))

	return writeTo(options.OutputPath, func(out io.Writer) error {
		title := color.New(color.FgGreen)
		title.Fprintln(out, "Last Modification Times")
		fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
		if report.Head != "" {
			fmt.Fprintf(out, "Head: %s\n", report.Head)
		}
		fmt.Fprintf(out, "Files: %d (%d unresolved), commits walked: %d\n\n",
			len(entries), len(report.Unresolved), report.Steps)

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Path\tLast Modified")

		missing := color.New(color.FgYellow)
		for _, e := range entries {
			ts := e.Timestamp
			if !e.Resolved {
				ts = missing.Sprint(ts)
			}
			fmt.Fprintf(tw, "%s\t%s\n", e.Path, ts)
		}

		return tw.Flush()
	})
}
