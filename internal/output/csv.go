package output

import (
	"encoding/csv"
	"io"
)

// CSVWriter writes the report as Path,Timestamp rows.
type CSVWriter struct{}

// Write outputs the modification-time map as CSV.
func (w *CSVWriter) Write(report *ModTimesReport, options OutputOptions) error {
	entries := report.Entries(placeholderOrDefault(options.Placeholder))

	return writeTo(options.OutputPath, func(out io.Writer) error {
		writer := csv.NewWriter(out)

		if err := writer.Write([]string{"Path", "Timestamp"}); err != nil {
			return err
		}
		for _, e := range entries {
			if err := writer.Write([]string{e.Path, e.Timestamp}); err != nil {
				return err
			}
		}

		writer.Flush()
		return writer.Error()
	})
}
