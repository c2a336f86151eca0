package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// CIWriter writes the report as NDJSON (one JSON object per line) for CI pipelines.
type CIWriter struct{}

// CISummary is the first line of CI output, containing aggregate statistics.
type CISummary struct {
	Type       string `json:"type"`
	Repo       string `json:"repo"`
	Head       string `json:"head,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	TotalFiles int    `json:"totalFiles"`
	Resolved   int    `json:"resolved"`
	Unresolved int    `json:"unresolved"`
	Steps      int    `json:"steps"`
}

// CIFileEntry represents a single file entry in CI output.
type CIFileEntry struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	Resolved  bool   `json:"resolved"`
}

// Write outputs the report as NDJSON.
func (w *CIWriter) Write(report *ModTimesReport, options OutputOptions) error {
	entries := report.Entries(placeholderOrDefault(options.Placeholder))

	return writeTo(options.OutputPath, func(out io.Writer) error {
		summary := CISummary{
			Type:       "summary",
			Repo:       report.RepoPath,
			Head:       report.Head,
			Strategy:   report.Strategy,
			TotalFiles: len(entries),
			Resolved:   len(report.Resolved),
			Unresolved: len(report.Unresolved),
			Steps:      report.Steps,
		}
		if err := writeNDJSONLine(out, summary); err != nil {
			return err
		}

		for _, e := range entries {
			entry := CIFileEntry{
				Type:      "file",
				Path:      e.Path,
				Timestamp: e.Timestamp,
				Resolved:  e.Resolved,
			}
			if err := writeNDJSONLine(out, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
