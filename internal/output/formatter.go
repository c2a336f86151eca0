package output

import (
	"sort"
	"strings"
	"time"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*ConsoleWriter)(nil)
	_ ReportWriter = (*JSONWriter)(nil)
	_ ReportWriter = (*CSVWriter)(nil)
	_ ReportWriter = (*MarkdownWriter)(nil)
	_ ReportWriter = (*CIWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// ParseFormat maps a format name to an OutputFormat. Unknown names fall
// back to JSON, the artifact format.
func ParseFormat(s string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "console", "text":
		return FormatConsole
	case "csv":
		return FormatCSV
	case "markdown", "md":
		return FormatMarkdown
	case "ci", "ndjson":
		return FormatCI
	default:
		return FormatJSON
	}
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format      OutputFormat
	OutputPath  string // "" or "-" writes to stdout; a .gz suffix compresses
	Placeholder string // value written for unresolved paths
}

// ModTimesReport holds the outcome of a modification-time run.
type ModTimesReport struct {
	RepoPath    string
	Head        string // commit the walk started from; empty for an empty repository
	Strategy    string
	GeneratedAt time.Time
	Resolved    map[string]time.Time
	Unresolved  []string
	Steps       int
}

// Entry is one row of a report.
type Entry struct {
	Path      string
	Timestamp string
	Resolved  bool
}

// Entries returns every path of the report sorted by path, unresolved
// paths carrying placeholder as their timestamp.
func (r *ModTimesReport) Entries(placeholder string) []Entry {
	entries := make([]Entry, 0, len(r.Resolved)+len(r.Unresolved))
	for path, when := range r.Resolved {
		entries = append(entries, Entry{Path: path, Timestamp: formatTimestamp(when), Resolved: true})
	}
	for _, path := range r.Unresolved {
		entries = append(entries, Entry{Path: path, Timestamp: placeholder})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// ReportWriter writes modification-time reports.
type ReportWriter interface {
	Write(report *ModTimesReport, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatConsole:
		return &ConsoleWriter{}
	case FormatCSV:
		return &CSVWriter{}
	case FormatMarkdown:
		return &MarkdownWriter{}
	case FormatCI:
		return &CIWriter{}
	default:
		return &JSONWriter{}
	}
}
