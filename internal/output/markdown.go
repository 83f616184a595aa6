package output

import (
	"fmt"
)

// MarkdownReportWriter writes run reports as Markdown.
type MarkdownReportWriter struct{}

// Write outputs the run report as Markdown.
func (w *MarkdownReportWriter) Write(report *RunReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Commit Dependency Graph")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", escapeMarkdown(report.Repo))
	fmt.Fprintf(out, "**Token:** `%s`\n\n", report.Token)
	fmt.Fprintf(out, "**Commits Scanned:** %d\n\n", report.Scanned)

	if !report.HasDependencies() {
		fmt.Fprintln(out, "_No dependencies found._")
		return nil
	}

	fmt.Fprintln(out, "## Commits")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| # | Commit | Label |")
	fmt.Fprintln(out, "|---|--------|-------|")
	for i, n := range report.Nodes {
		label := escapeMarkdown(n.Label)
		if n.Highlighted {
			label = "**" + label + "**"
		}
		fmt.Fprintf(out, "| %d | `%s` | %s |\n", i+1, shortID(n.ID), label)
	}
	fmt.Fprintln(out)

	if len(report.Skipped) > 0 {
		fmt.Fprintln(out, "## Skipped Commits")
		fmt.Fprintln(out)
		for _, s := range report.Skipped {
			fmt.Fprintf(out, "- `%s`: %s\n", shortID(s.SHA), escapeMarkdown(s.Error))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "## Artifacts")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "- Diagram: `%s`\n", report.DiagramPath)
	switch {
	case report.RenderError != "":
		fmt.Fprintf(out, "- Image: not rendered (%s)\n", escapeMarkdown(report.RenderError))
	case report.ImagePath != "":
		fmt.Fprintf(out, "- Image: `%s`\n", report.ImagePath)
	}
	fmt.Fprintf(out, "\n_Generated at %s_\n", report.GeneratedAt.Format(reportDateTimeLayout))

	return nil
}
