package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitgraph/internal/output"
	"github.com/masmgr/commitgraph/internal/visualizer"
)

// progressEvery is how many commits pass between progress log lines.
const progressEvery = 500

// GraphCmd creates the graph command.
func GraphCmd() *cli.Command {
	return &cli.Command{
		Name:                   "graph",
		Usage:                  "Trace the commits that touched a file and write the dependency diagram",
		UseShortOptionHandling: true,
		Flags:                  graphFlags(),
		Action:                 graphAction,
	}
}

func graphAction(c *cli.Context) error {
	cmdCtx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	v := &visualizer.Visualizer{
		Config:     cmdCtx.Config,
		Logger:     cmdCtx.Logger,
		SkipRender: c.Bool("no-render"),
		OnProgress: progressLogger(cmdCtx.Logger),
	}

	result, runErr := v.Run(c.Context)
	if result == nil {
		return runErr
	}

	report := output.NewRunReport(result, runErr, time.Now())
	if err := output.NewReportWriter(cmdCtx.Output.Format).Write(report, cmdCtx.Output); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return runErr
}

func progressLogger(logger *slog.Logger) func(processed, total int) {
	return func(processed, total int) {
		if processed%progressEvery == 0 || processed == total {
			logger.Info("scan progress", "processed", processed, "total", total)
		}
	}
}
