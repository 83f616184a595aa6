// Package visualizer runs the full pipeline: history scan, relevance filter,
// graph build, diagram write and image render.
package visualizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/masmgr/commitgraph/config"
	"github.com/masmgr/commitgraph/internal/bugfix"
	"github.com/masmgr/commitgraph/internal/git"
	"github.com/masmgr/commitgraph/internal/graph"
	"github.com/masmgr/commitgraph/internal/logging"
	"github.com/masmgr/commitgraph/internal/plantuml"
	"github.com/masmgr/commitgraph/internal/relevance"
	"github.com/masmgr/commitgraph/internal/render"
)

// Outcome is the terminal state of a successful run.
type Outcome string

const (
	// OutcomeGraphWritten means the diagram file was written.
	OutcomeGraphWritten Outcome = "graph-written"
	// OutcomeNoDependencies means no commit touched the token. Nothing is written.
	OutcomeNoDependencies Outcome = "no-dependencies"
)

// SourceFactory opens the history source for a backend.
type SourceFactory func(backend git.Backend, opts git.ReadOptions) (git.HistorySource, error)

// Visualizer wires the pipeline stages together for one configuration.
type Visualizer struct {
	Config *config.Config
	Logger *slog.Logger

	// NewSource defaults to git.NewHistorySource.
	NewSource SourceFactory
	// Renderer defaults to PlantUML configured from Config.
	Renderer render.Renderer
	// SkipRender stops after the diagram file is written.
	SkipRender bool
	// OnProgress is forwarded to the history scan.
	OnProgress func(processed, total int)
}

// Result describes what a run produced.
type Result struct {
	Repo        string
	Token       string
	Outcome     Outcome
	Graph       *graph.DependencyGraph
	DiagramPath string
	ImagePath   string
	Scanned     int
	Highlighted int
	Skipped     []relevance.SkippedCommit
}

// Run executes the pipeline.
//
// The configuration is validated before any history query. The diagram file
// is written only once the whole history has been scanned. A render failure
// returns the Result, with the diagram path kept, alongside a *render.RenderError.
func (v *Visualizer) Run(ctx context.Context) (*Result, error) {
	cfg := v.Config
	if cfg == nil {
		return nil, &config.ConfigError{Message: "no configuration given"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := v.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	filter, err := git.NewPathFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, &config.ConfigError{Field: config.KeyInclude, Message: "invalid path filter", Err: err}
	}
	detector, err := bugfix.NewDetector(cfg.Highlight)
	if err != nil {
		return nil, &config.ConfigError{Field: config.KeyHighlight, Message: "invalid pattern", Err: err}
	}

	newSource := v.NewSource
	if newSource == nil {
		newSource = git.NewHistorySource
	}
	src, err := newSource(cfg.HistoryBackend(), git.ReadOptions{
		RepoPath: cfg.RepoPath,
		Order:    cfg.ScanOrder(),
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	logger.Info("scanning history",
		"repo", cfg.RepoPath,
		"token", cfg.FileHash,
		"backend", string(cfg.HistoryBackend()),
		"order", cfg.ScanOrder().String(),
	)
	scan, err := relevance.Scan(ctx, src, cfg.FileHash, relevance.Options{
		Filter:     filter,
		Logger:     logger,
		OnProgress: v.OnProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}

	result := &Result{
		Repo:    cfg.RepoPath,
		Token:   cfg.FileHash,
		Scanned: scan.Scanned,
		Skipped: scan.Skipped,
	}

	if !scan.HasDependencies() {
		logger.Info("no relevant commits", "token", cfg.FileHash, "scanned", scan.Scanned)
		result.Outcome = OutcomeNoDependencies
		result.Graph = &graph.DependencyGraph{}
		return result, nil
	}

	g := graph.Build(scan.Relevant)
	if !detector.IsEmpty() {
		fixes := detector.Detect(scan.Relevant)
		result.Highlighted = g.Highlight(fixes.Contains)
		logger.Debug("highlighted commits", "count", result.Highlighted)
	}
	text := plantuml.SerializeWithOptions(g, plantuml.Options{Title: cfg.Title, HighlightColor: cfg.HighlightColor})
	result.Graph = g

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := WriteFileAtomic(cfg.PumlOutputPath, []byte(text)); err != nil {
		return nil, fmt.Errorf("failed to write diagram: %w", err)
	}
	result.Outcome = OutcomeGraphWritten
	result.DiagramPath = cfg.PumlOutputPath
	logger.Info("wrote diagram", "path", cfg.PumlOutputPath, "nodes", len(g.Nodes), "edges", len(g.Edges))

	if v.SkipRender {
		return result, nil
	}

	renderer := v.Renderer
	if renderer == nil {
		renderer = render.NewPlantUMLRenderer(render.PlantUMLOptions{
			PlantUMLPath: cfg.PlantUMLPath,
			JavaPath:     cfg.JavaPath,
			Timeout:      cfg.RenderTimeout,
			Logger:       logger,
		})
	}

	image, err := renderer.Render(ctx, cfg.PumlOutputPath, cfg.PngOutputPath)
	if err != nil {
		var renderErr *render.RenderError
		if !errors.As(err, &renderErr) {
			err = &render.RenderError{DiagramPath: cfg.PumlOutputPath, OutputPath: cfg.PngOutputPath, Err: err}
		}
		logger.Error("render failed, diagram kept", "diagram", cfg.PumlOutputPath, "error", err.Error())
		return result, err
	}
	result.ImagePath = image
	return result, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
