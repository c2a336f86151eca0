package cmd

import (
	"os"

	"github.com/fatih/color"

	"github.com/masmgr/modtimes-go/internal/output"
)

func writeReport(ctx *CommandContext, report *output.ModTimesReport) error {
	opts := ctx.OutputOptions()
	writer := output.NewReportWriter(opts.Format)
	return writer.Write(report, opts)
}

// Status lines go to stderr so a report written to stdout stays clean.
func statusLine(format string, a ...interface{}) {
	color.New(color.FgGreen).Fprintf(os.Stderr, format+"\n", a...)
}

func warnLine(format string, a ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", a...)
}
