package output

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSONReportWriter writes run reports as JSON.
type JSONReportWriter struct{}

// JSONRunReport is the JSON output structure for a run.
type JSONRunReport struct {
	RepoPath    string            `json:"repo"`
	Token       string            `json:"token"`
	Outcome     string            `json:"outcome"`
	GeneratedAt string            `json:"generatedAt"`
	Scanned     int               `json:"scanned"`
	DiagramPath string            `json:"diagramPath,omitempty"`
	ImagePath   string            `json:"imagePath,omitempty"`
	RenderError string            `json:"renderError,omitempty"`
	Nodes       []JSONNode        `json:"nodes"`
	Edges       []JSONEdge        `json:"edges"`
	Skipped     []JSONSkippedItem `json:"skipped"`
}

// JSONNode is a graph node in JSON format.
type JSONNode struct {
	SHA         string `json:"sha"`
	Label       string `json:"label"`
	Highlighted bool   `json:"highlighted,omitempty"`
}

// JSONEdge is a graph edge in JSON format.
type JSONEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// JSONSkippedItem is a skipped commit in JSON format.
type JSONSkippedItem struct {
	SHA   string `json:"sha"`
	Error string `json:"error"`
}

// Write outputs the run report as JSON.
func (w *JSONReportWriter) Write(report *RunReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(toJSONReport(report)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func toJSONReport(report *RunReport) JSONRunReport {
	nodes := make([]JSONNode, len(report.Nodes))
	for i, n := range report.Nodes {
		nodes[i] = JSONNode{SHA: n.ID, Label: n.Label, Highlighted: n.Highlighted}
	}
	edges := make([]JSONEdge, len(report.Edges))
	for i, e := range report.Edges {
		edges[i] = JSONEdge{From: e.From, To: e.To}
	}
	skipped := make([]JSONSkippedItem, len(report.Skipped))
	for i, s := range report.Skipped {
		skipped[i] = JSONSkippedItem{SHA: s.SHA, Error: s.Error}
	}

	return JSONRunReport{
		RepoPath:    report.Repo,
		Token:       report.Token,
		Outcome:     string(report.Outcome),
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Scanned:     report.Scanned,
		DiagramPath: report.DiagramPath,
		ImagePath:   report.ImagePath,
		RenderError: report.RenderError,
		Nodes:       nodes,
		Edges:       edges,
		Skipped:     skipped,
	}
}
