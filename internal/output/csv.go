package output

import (
	"encoding/csv"
	"strconv"
)

// CSVReportWriter writes the graph nodes of a run as CSV, one row per commit
// in scan order. The predecessor column names the node with an edge into it.
type CSVReportWriter struct{}

// Write outputs the run report as CSV.
func (w *CSVReportWriter) Write(report *RunReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	predecessor := make(map[string]string, len(report.Edges))
	for _, e := range report.Edges {
		predecessor[e.To] = e.From
	}

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"position", "sha", "label", "predecessor"}); err != nil {
		return err
	}
	for i, n := range report.Nodes {
		if err := writer.Write([]string{strconv.Itoa(i + 1), n.ID, n.Label, predecessor[n.ID]}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
