package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitgraph/config"
	"github.com/masmgr/commitgraph/internal/logging"
	"github.com/masmgr/commitgraph/internal/output"
)

// CommandContext holds common state for command execution.
type CommandContext struct {
	Config *config.Config
	Logger *slog.Logger
	Output output.OutputOptions
}

// NewCommandContext loads the configuration, applies flag overrides and
// builds the logger. The configuration is not validated here.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(c, cfg, errWriter(c))
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config: cfg,
		Logger: logger,
		Output: OutputOptions(c),
	}, nil
}

// loadConfig loads configuration from file, environment and flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(c, cfg)
	return cfg, nil
}

// applyFlagOverrides copies every explicitly set flag onto cfg.
func applyFlagOverrides(c *cli.Context, cfg *config.Config) {
	stringFlags := []struct {
		flag string
		dst  *string
	}{
		{"repo", &cfg.RepoPath},
		{"token", &cfg.FileHash},
		{"puml", &cfg.PumlOutputPath},
		{"png", &cfg.PngOutputPath},
		{"plantuml", &cfg.PlantUMLPath},
		{"java", &cfg.JavaPath},
		{"backend", &cfg.Backend},
		{"order", &cfg.Order},
		{"title", &cfg.Title},
		{"highlight-color", &cfg.HighlightColor},
		{"log-level", &cfg.LogLevel},
	}
	for _, s := range stringFlags {
		if c.IsSet(s.flag) {
			*s.dst = c.String(s.flag)
		}
	}

	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("render-timeout") {
		cfg.RenderTimeout = c.Duration("render-timeout")
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Exclude = excludes
	}
	if highlights := c.StringSlice("highlight"); len(highlights) > 0 {
		cfg.Highlight = highlights
	}
}

// newLogger builds the logger from log_level, then -v/-q.
func newLogger(c *cli.Context, cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	base, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, &config.ConfigError{Field: config.KeyLogLevel, Message: "invalid value", Err: err}
	}
	level := logging.LevelFromVerbosity(c.Count("verbose"), c.Bool("quiet"), base)
	return logging.NewLogger(w, level), nil
}

func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		OutputPath: c.String("output"),
	}
}
