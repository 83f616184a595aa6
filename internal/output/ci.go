package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// CIReportWriter writes run reports as NDJSON (one JSON object per line) for CI pipelines.
type CIReportWriter struct{}

// CISummary is the first line of CI output.
type CISummary struct {
	Type        string `json:"type"`
	Outcome     string `json:"outcome"`
	Token       string `json:"token"`
	Scanned     int    `json:"scanned"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	Skipped     int    `json:"skipped"`
	DiagramPath string `json:"diagramPath,omitempty"`
	ImagePath   string `json:"imagePath,omitempty"`
	RenderError string `json:"renderError,omitempty"`
}

// CIEntry is a node, edge or skipped commit line.
type CIEntry struct {
	Type        string `json:"type"`
	SHA         string `json:"sha,omitempty"`
	Label       string `json:"label,omitempty"`
	Highlighted bool   `json:"highlighted,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Write outputs the run report as NDJSON.
func (w *CIReportWriter) Write(report *RunReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	summary := CISummary{
		Type:        "summary",
		Outcome:     string(report.Outcome),
		Token:       report.Token,
		Scanned:     report.Scanned,
		Nodes:       len(report.Nodes),
		Edges:       len(report.Edges),
		Skipped:     len(report.Skipped),
		DiagramPath: report.DiagramPath,
		ImagePath:   report.ImagePath,
		RenderError: report.RenderError,
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, n := range report.Nodes {
		if err := writeNDJSONLine(out, CIEntry{Type: "node", SHA: n.ID, Label: n.Label, Highlighted: n.Highlighted}); err != nil {
			return err
		}
	}
	for _, e := range report.Edges {
		if err := writeNDJSONLine(out, CIEntry{Type: "edge", From: e.From, To: e.To}); err != nil {
			return err
		}
	}
	for _, s := range report.Skipped {
		if err := writeNDJSONLine(out, CIEntry{Type: "skipped", SHA: s.SHA, Error: s.Error}); err != nil {
			return err
		}
	}

	return nil
}

func writeNDJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
