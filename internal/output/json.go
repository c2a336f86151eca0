package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter writes the report as a single JSON object mapping each path
// to its last modification time. Keys are sorted.
type JSONWriter struct{}

// Write outputs the modification-time map as JSON.
func (w *JSONWriter) Write(report *ModTimesReport, options OutputOptions) error {
	entries := report.Entries(placeholderOrDefault(options.Placeholder))

	times := make(map[string]string, len(entries))
	for _, e := range entries {
		times[e.Path] = e.Timestamp
	}

	data, err := json.MarshalIndent(times, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return writeTo(options.OutputPath, func(out io.Writer) error {
		_, err := fmt.Fprintf(out, "%s\n", data)
		return err
	})
}
