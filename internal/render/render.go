// Package render turns a diagram description file into a raster image with an external tool.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/masmgr/commitgraph/internal/logging"
)

// DefaultTimeout bounds a single renderer invocation.
const DefaultTimeout = 2 * time.Minute

// Renderer produces an image at outputPath from the diagram at diagramPath
// and returns the path of the image.
type Renderer interface {
	Render(ctx context.Context, diagramPath, outputPath string) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, diagramPath, outputPath string) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, diagramPath, outputPath string) (string, error) {
	return f(ctx, diagramPath, outputPath)
}

// RenderError reports a failed or incomplete renderer invocation.
type RenderError struct {
	DiagramPath string
	OutputPath  string
	Err         error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s to %s: %v", e.DiagramPath, e.OutputPath, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PlantUMLOptions configures the PlantUML renderer.
type PlantUMLOptions struct {
	// PlantUMLPath is either plantuml.jar (run through Java) or a plantuml executable.
	PlantUMLPath string
	JavaPath     string
	Timeout      time.Duration
	Logger       *slog.Logger
}

// PlantUMLRenderer invokes PlantUML to render PNG images.
type PlantUMLRenderer struct {
	opts PlantUMLOptions
}

// NewPlantUMLRenderer creates a PlantUML renderer.
func NewPlantUMLRenderer(opts PlantUMLOptions) *PlantUMLRenderer {
	if opts.JavaPath == "" {
		opts.JavaPath = "java"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}
	return &PlantUMLRenderer{opts: opts}
}

// Command returns the executable and arguments that render diagramPath into outDir.
func (r *PlantUMLRenderer) Command(diagramPath, outDir string) (string, []string) {
	args := []string{"-tpng", "-charset", "UTF-8", "-o", outDir, diagramPath}
	if strings.EqualFold(filepath.Ext(r.opts.PlantUMLPath), ".jar") {
		return r.opts.JavaPath, append([]string{"-jar", r.opts.PlantUMLPath}, args...)
	}
	return r.opts.PlantUMLPath, args
}

// Render runs PlantUML into a scratch directory next to outputPath, checks
// that the image materialized and moves it to outputPath.
func (r *PlantUMLRenderer) Render(ctx context.Context, diagramPath, outputPath string) (string, error) {
	fail := func(err error) (string, error) {
		return "", &RenderError{DiagramPath: diagramPath, OutputPath: outputPath, Err: err}
	}

	if _, err := os.Stat(diagramPath); err != nil {
		return fail(err)
	}

	outDir, err := filepath.Abs(filepath.Dir(outputPath))
	if err != nil {
		return fail(err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fail(err)
	}
	scratch, err := os.MkdirTemp(outDir, ".render-*")
	if err != nil {
		return fail(err)
	}
	defer os.RemoveAll(scratch)

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	name, args := r.Command(diagramPath, scratch)
	r.opts.Logger.Debug("invoking renderer", "command", name, "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(fmt.Errorf("renderer timed out after %s: %w", r.opts.Timeout, ctx.Err()))
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fail(fmt.Errorf("renderer failed: %w: %s", err, msg))
		}
		return fail(fmt.Errorf("renderer failed: %w", err))
	}

	produced := filepath.Join(scratch, ImageName(diagramPath))
	if _, err := os.Stat(produced); err != nil {
		return fail(fmt.Errorf("renderer did not produce %s: %w", filepath.Base(produced), err))
	}
	if err := os.Rename(produced, outputPath); err != nil {
		return fail(err)
	}

	r.opts.Logger.Info("rendered image", "path", outputPath)
	return outputPath, nil
}

// ImageName is the file name PlantUML gives the PNG rendered from diagramPath.
func ImageName(diagramPath string) string {
	base := filepath.Base(diagramPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}
