package output

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
)

const consoleLabelWidth = 72

// ConsoleReportWriter writes run reports for a terminal.
type ConsoleReportWriter struct{}

// Write outputs the run report to the console.
func (w *ConsoleReportWriter) Write(report *RunReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	green.Fprintln(out, "Commit Dependency Graph")
	fmt.Fprintf(out, "Repository: %s\n", report.Repo)
	fmt.Fprintf(out, "Token: %s\n", report.Token)
	fmt.Fprintf(out, "Commits scanned: %d\n", report.Scanned)

	if len(report.Skipped) > 0 {
		fmt.Fprintln(out)
		yellow.Fprintf(out, "Skipped %d commit(s):\n", len(report.Skipped))
		for _, s := range report.Skipped {
			fmt.Fprintf(out, "  %s  %s\n", shortID(s.SHA), s.Error)
		}
	}

	if !report.HasDependencies() {
		fmt.Fprintln(out)
		yellow.Fprintf(out, "No dependencies found: no commit touched %q.\n", report.Token)
		return nil
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCommit\tLabel")
	for i, n := range report.Nodes {
		mark := ""
		if n.Highlighted {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%s\n", i+1, mark, shortID(n.ID), truncateMessage(n.Label, consoleLabelWidth))
	}
	tw.Flush()

	fmt.Fprintf(out, "\nNodes: %d  Edges: %d\n", len(report.Nodes), len(report.Edges))
	fmt.Fprintf(out, "Diagram: %s\n", report.DiagramPath)
	switch {
	case report.RenderError != "":
		red.Fprintf(out, "Image: not rendered (%s)\n", report.RenderError)
	case report.ImagePath != "":
		fmt.Fprintf(out, "Image: %s\n", report.ImagePath)
	default:
		fmt.Fprintln(out, "Image: skipped")
	}

	return nil
}
