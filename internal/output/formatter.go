package output

import (
	"time"

	"github.com/masmgr/commitgraph/internal/graph"
	"github.com/masmgr/commitgraph/internal/visualizer"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*ConsoleReportWriter)(nil)
	_ ReportWriter = (*JSONReportWriter)(nil)
	_ ReportWriter = (*CSVReportWriter)(nil)
	_ ReportWriter = (*MarkdownReportWriter)(nil)
	_ ReportWriter = (*CIReportWriter)(nil)
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

// ParseFormat maps a flag value to an OutputFormat. Unknown values select console.
func ParseFormat(s string) OutputFormat {
	switch s {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	case "markdown", "md":
		return FormatMarkdown
	case "ci", "ndjson":
		return FormatCI
	default:
		return FormatConsole
	}
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string // empty means stdout
}

// SkippedItem is a commit left out of the graph because its changed files could not be read.
type SkippedItem struct {
	SHA   string
	Error string
}

// RunReport summarizes one graph run.
type RunReport struct {
	Repo        string
	Token       string
	Outcome     visualizer.Outcome
	GeneratedAt time.Time
	Scanned     int
	DiagramPath string
	ImagePath   string
	Nodes       []graph.Node
	Edges       []graph.Edge
	Skipped     []SkippedItem
	RenderError string
}

// NewRunReport builds a report from a pipeline result. renderErr is the
// error Run returned alongside the result, if any.
func NewRunReport(result *visualizer.Result, renderErr error, now time.Time) *RunReport {
	report := &RunReport{
		Repo:        result.Repo,
		Token:       result.Token,
		Outcome:     result.Outcome,
		GeneratedAt: now,
		Scanned:     result.Scanned,
		DiagramPath: result.DiagramPath,
		ImagePath:   result.ImagePath,
		Nodes:       []graph.Node{},
		Edges:       []graph.Edge{},
		Skipped:     make([]SkippedItem, 0, len(result.Skipped)),
	}
	if result.Graph != nil {
		report.Nodes = append(report.Nodes, result.Graph.Nodes...)
		report.Edges = append(report.Edges, result.Graph.Edges...)
	}
	for _, s := range result.Skipped {
		item := SkippedItem{SHA: s.SHA}
		if s.Err != nil {
			item.Error = s.Err.Error()
		}
		report.Skipped = append(report.Skipped, item)
	}
	if renderErr != nil {
		report.RenderError = renderErr.Error()
	}
	return report
}

// HasDependencies reports whether the run found relevant commits.
func (r *RunReport) HasDependencies() bool {
	return r.Outcome != visualizer.OutcomeNoDependencies && len(r.Nodes) > 0
}

// ReportWriter writes run reports.
type ReportWriter interface {
	Write(report *RunReport, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatJSON:
		return &JSONReportWriter{}
	case FormatCSV:
		return &CSVReportWriter{}
	case FormatMarkdown:
		return &MarkdownReportWriter{}
	case FormatCI:
		return &CIReportWriter{}
	default:
		return &ConsoleReportWriter{}
	}
}
