package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitgraph/config"
	"github.com/masmgr/commitgraph/internal/output"
)

func init() {
	// -v is taken by --verbose.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

// App creates the CLI application. Without a subcommand it runs graph.
func App() *cli.App {
	return &cli.App{
		Name:                      "commitgraph",
		Usage:                     "Draw the commits that touched a file as a dependency graph",
		Version:                   "1.0.0",
		UseShortOptionHandling:    true,
		DisableSliceFlagSeparator: true, // globs and regexes may contain commas
		Commands: []*cli.Command{
			GraphCmd(),
			InitCmd(),
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default: ./" + config.DefaultPath + " when present)",
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
		}, graphFlags()...),
		Action: graphAction,
	}
}

// Flags of the graph command. Each one overrides the configuration key of the same meaning.
func graphFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository (" + config.KeyRepoPath + ")",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "File path or hash fragment to trace (" + config.KeyFileHash + ")",
		},
		&cli.StringFlag{
			Name:  "puml",
			Usage: "Diagram description output path (" + config.KeyPumlOutputPath + ")",
		},
		&cli.StringFlag{
			Name:  "png",
			Usage: "Rendered image output path (" + config.KeyPngOutputPath + ")",
		},
		&cli.StringFlag{
			Name:  "plantuml",
			Usage: "plantuml.jar or plantuml executable (" + config.KeyPlantUMLPath + ")",
		},
		&cli.StringFlag{
			Name:  "java",
			Usage: "Java executable used for plantuml.jar (" + config.KeyJavaPath + ")",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "History backend (cli, gogit)",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "Scan order, which sets edge direction (newest-first, oldest-first)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for each history query",
		},
		&cli.DurationFlag{
			Name:  "render-timeout",
			Usage: "Timeout for the renderer",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "highlight",
			Usage: "Regex matched against commit messages, or \"default\" for fix/close keywords; matching nodes are filled (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "highlight-color",
			Usage: "Fill colour for highlighted nodes (" + config.KeyHighlightColor + ")",
		},
		&cli.StringFlag{
			Name:  "title",
			Usage: "Diagram title",
		},
		&cli.BoolFlag{
			Name:  "no-render",
			Usage: "Write the diagram description only",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format (console, json, csv, markdown, ci)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report output path (default: stdout)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error, quiet)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Increase log verbosity (-v info, -vv debug)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Suppress log output",
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	return output.ParseFormat(s)
}

// Run executes the CLI application. SIGINT and SIGTERM cancel the run.
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := App().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
