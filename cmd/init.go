package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitgraph/config"
)

// InitCmd creates the init command, which writes a configuration template.
func InitCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write a configuration template in CSV form",
		ArgsUsage: "[path]",
		Action:    initAction,
	}
}

func initAction(c *cli.Context) error {
	path := config.DefaultPath
	if c.NArg() > 0 {
		path = c.Args().First()
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return fmt.Errorf("init writes CSV; %s must end in .csv", path)
	}

	cfg := config.DefaultConfig()
	cfg.RepoPath = "."
	cfg.PumlOutputPath = "commitgraph.puml"
	cfg.PngOutputPath = "commitgraph.png"

	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	if missing := cfg.MissingKeys(); len(missing) > 0 {
		fmt.Fprintf(c.App.Writer, "Fill in: %s\n", strings.Join(missing, ", "))
	}
	return nil
}
