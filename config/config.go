package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/masmgr/commitgraph/internal/bugfix"
	"github.com/masmgr/commitgraph/internal/git"
	"github.com/masmgr/commitgraph/internal/logging"
)

// Configuration keys.
const (
	KeyRepoPath       = "repo_path"
	KeyFileHash       = "file_hash"
	KeyPumlOutputPath = "puml_output_path"
	KeyPngOutputPath  = "png_output_path"
	KeyPlantUMLPath   = "plantuml_path"
	KeyJavaPath       = "java_path"
	KeyBackend        = "backend"
	KeyOrder          = "order"
	KeyTimeout        = "timeout"
	KeyRenderTimeout  = "render_timeout"
	KeyInclude        = "include"
	KeyExclude        = "exclude"
	KeyTitle          = "title"
	KeyHighlight      = "highlight"
	KeyHighlightColor = "highlight_color"
	KeyLogLevel       = "log_level"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "config.csv"

// EnvPrefix prefixes environment overrides, e.g. COMMITGRAPH_REPO_PATH.
const EnvPrefix = "COMMITGRAPH"

// RequiredKeys must be present and non-empty.
var RequiredKeys = []string{KeyRepoPath, KeyFileHash, KeyPumlOutputPath, KeyPngOutputPath, KeyPlantUMLPath}

// Config is the root configuration structure.
type Config struct {
	RepoPath       string        `mapstructure:"repo_path"`        // Repository to scan
	FileHash       string        `mapstructure:"file_hash"`        // Relevance token (path or hash fragment)
	PumlOutputPath string        `mapstructure:"puml_output_path"` // Diagram description output
	PngOutputPath  string        `mapstructure:"png_output_path"`  // Rendered image output
	PlantUMLPath   string        `mapstructure:"plantuml_path"`    // plantuml.jar or plantuml executable
	JavaPath       string        `mapstructure:"java_path"`        // Default: java
	Backend        string        `mapstructure:"backend"`          // Default: cli
	Order          string        `mapstructure:"order"`            // Default: newest-first
	Timeout        time.Duration `mapstructure:"timeout"`          // Per history query. Default: 30s
	RenderTimeout  time.Duration `mapstructure:"render_timeout"`   // Default: 2m
	Include        []string      `mapstructure:"include"`          // Glob patterns to include
	Exclude        []string      `mapstructure:"exclude"`          // Glob patterns to exclude
	Title          string        `mapstructure:"title"`            // Optional diagram title
	Highlight      []string      `mapstructure:"highlight"`        // Message regexes of commits to highlight
	HighlightColor string        `mapstructure:"highlight_color"`  // Default: #FFD6D6
	LogLevel       string        `mapstructure:"log_level"`        // Default: warn
}

// ConfigError represents a missing or malformed configuration value.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Field == "" {
		return "config error: " + msg
	}
	return "config error in field '" + e.Field + "': " + msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		JavaPath:      "java",
		Backend:       string(git.BackendCLI),
		Order:         git.OrderNewestFirst.String(),
		Timeout:       git.DefaultTimeout,
		RenderTimeout: 2 * time.Minute,
		Include:       []string{},
		Exclude:       []string{},
		Highlight:     []string{},
		LogLevel:      "warn",
	}
}

func allKeys() []string {
	return []string{
		KeyRepoPath, KeyFileHash, KeyPumlOutputPath, KeyPngOutputPath, KeyPlantUMLPath,
		KeyJavaPath, KeyBackend, KeyOrder, KeyTimeout, KeyRenderTimeout,
		KeyInclude, KeyExclude, KeyTitle, KeyHighlight, KeyHighlightColor, KeyLogLevel,
	}
}

// LoadConfig loads configuration from a file, merging with defaults and
// COMMITGRAPH_* environment variables. An empty path tries DefaultPath.
// The result is not validated; call Validate before using it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault(KeyJavaPath, def.JavaPath)
	v.SetDefault(KeyBackend, def.Backend)
	v.SetDefault(KeyOrder, def.Order)
	v.SetDefault(KeyTimeout, def.Timeout)
	v.SetDefault(KeyRenderTimeout, def.RenderTimeout)
	v.SetDefault(KeyInclude, def.Include)
	v.SetDefault(KeyExclude, def.Exclude)
	v.SetDefault(KeyHighlight, def.Highlight)
	v.SetDefault(KeyLogLevel, def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range allKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, &ConfigError{Field: key, Message: "cannot bind environment variable", Err: err}
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		if err := readInto(v, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.UnmarshalExact(cfg); err != nil {
		return nil, &ConfigError{Message: "cannot decode " + describe(path), Err: err}
	}
	cfg.normalize()
	return cfg, nil
}

func describe(path string) string {
	if path == "" {
		return "environment"
	}
	return path
}

// fileFormats are the extensions decoded by viper besides .csv.
var fileFormats = []string{".json", ".yaml", ".yml", ".toml", ".env"}

func readInto(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return &ConfigError{Message: "cannot read config file " + path, Err: err}
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return &ConfigError{Message: "cannot read config file " + path, Err: err}
		}
		defer f.Close()

		values, err := ReadCSV(f)
		if err != nil {
			return err
		}
		if err := v.MergeConfigMap(values); err != nil {
			return &ConfigError{Message: "cannot merge " + path, Err: err}
		}
		return nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(fileFormats, ext) {
		return &ConfigError{Message: fmt.Sprintf("unsupported config format %q (use .csv, %s)", ext, strings.Join(fileFormats, ", "))}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return &ConfigError{Message: "cannot parse config file " + path, Err: err}
	}
	return nil
}

// ReadCSV reads flat key,value rows. Blank lines and lines starting with '#'
// are ignored; any other row must have exactly two fields.
func ReadCSV(r io.Reader) (map[string]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	values := make(map[string]any)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ConfigError{Message: "malformed csv", Err: err}
		}
		if isBlankRow(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(row) != 2 {
			return nil, &ConfigError{
				Field:   strings.TrimSpace(row[0]),
				Message: fmt.Sprintf("line %d: expected key,value but got %d fields", line, len(row)),
			}
		}
		key := strings.ToLower(strings.TrimSpace(row[0]))
		if key == "" {
			return nil, &ConfigError{Message: fmt.Sprintf("line %d: empty key", line)}
		}
		values[key] = strings.TrimSpace(row[1])
	}
	return values, nil
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes cfg as key,value rows in the format ReadCSV accepts.
func WriteCSV(w io.Writer, cfg *Config) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{KeyRepoPath, cfg.RepoPath},
		{KeyFileHash, cfg.FileHash},
		{KeyPumlOutputPath, cfg.PumlOutputPath},
		{KeyPngOutputPath, cfg.PngOutputPath},
		{KeyPlantUMLPath, cfg.PlantUMLPath},
		{KeyJavaPath, cfg.JavaPath},
		{KeyBackend, cfg.Backend},
		{KeyOrder, cfg.Order},
		{KeyTimeout, cfg.Timeout.String()},
		{KeyRenderTimeout, cfg.RenderTimeout.String()},
		{KeyLogLevel, cfg.LogLevel},
	}
	if len(cfg.Include) > 0 {
		rows = append(rows, []string{KeyInclude, strings.Join(cfg.Include, ",")})
	}
	if len(cfg.Exclude) > 0 {
		rows = append(rows, []string{KeyExclude, strings.Join(cfg.Exclude, ",")})
	}
	if cfg.Title != "" {
		rows = append(rows, []string{KeyTitle, cfg.Title})
	}
	if len(cfg.Highlight) > 0 {
		rows = append(rows, []string{KeyHighlight, strings.Join(cfg.Highlight, ",")})
	}
	if cfg.HighlightColor != "" {
		rows = append(rows, []string{KeyHighlightColor, cfg.HighlightColor})
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// SaveConfig writes cfg to path as CSV.
func SaveConfig(cfg *Config, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Config) normalize() {
	c.RepoPath = strings.TrimSpace(c.RepoPath)
	c.PumlOutputPath = strings.TrimSpace(c.PumlOutputPath)
	c.PngOutputPath = strings.TrimSpace(c.PngOutputPath)
	c.PlantUMLPath = strings.TrimSpace(c.PlantUMLPath)
	c.JavaPath = strings.TrimSpace(c.JavaPath)
	c.Include = cleanList(c.Include)
	c.Exclude = cleanList(c.Exclude)
	c.Highlight = cleanList(c.Highlight)
	c.HighlightColor = strings.TrimSpace(c.HighlightColor)
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// Validate checks every value and reports all problems at once.
// The returned error joins one *ConfigError per problem.
func (c *Config) Validate() error {
	var errs []error

	values := c.requiredValues()
	for _, key := range RequiredKeys {
		if strings.TrimSpace(values[key]) == "" {
			errs = append(errs, &ConfigError{Field: key, Message: "required key is missing or empty"})
		}
	}

	if c.PumlOutputPath != "" && filepath.Clean(c.PumlOutputPath) == filepath.Clean(c.PngOutputPath) {
		errs = append(errs, &ConfigError{Field: KeyPngOutputPath, Message: "must differ from " + KeyPumlOutputPath})
	}
	if _, err := git.ParseBackend(c.Backend); err != nil {
		errs = append(errs, &ConfigError{Field: KeyBackend, Message: "invalid value", Err: err})
	}
	if _, err := git.ParseScanOrder(c.Order); err != nil {
		errs = append(errs, &ConfigError{Field: KeyOrder, Message: "invalid value", Err: err})
	}
	if c.Timeout < 0 {
		errs = append(errs, &ConfigError{Field: KeyTimeout, Message: "must not be negative"})
	}
	if c.RenderTimeout < 0 {
		errs = append(errs, &ConfigError{Field: KeyRenderTimeout, Message: "must not be negative"})
	}
	if _, err := logging.LevelFromString(c.LogLevel); err != nil {
		errs = append(errs, &ConfigError{Field: KeyLogLevel, Message: "invalid value", Err: err})
	}
	for _, p := range c.Include {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, &ConfigError{Field: KeyInclude, Message: fmt.Sprintf("invalid glob %q", p)})
		}
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, &ConfigError{Field: KeyExclude, Message: fmt.Sprintf("invalid glob %q", p)})
		}
	}

	if _, err := bugfix.NewDetector(c.Highlight); err != nil {
		errs = append(errs, &ConfigError{Field: KeyHighlight, Message: "invalid pattern", Err: err})
	}
	if c.HighlightColor != "" && (!strings.HasPrefix(c.HighlightColor, "#") || strings.ContainsAny(c.HighlightColor, " \t\"")) {
		errs = append(errs, &ConfigError{Field: KeyHighlightColor, Message: fmt.Sprintf("invalid colour %q (expected #RRGGBB or #Name)", c.HighlightColor)})
	}

	return errors.Join(errs...)
}

// MissingKeys returns the required keys that are empty, sorted.
func (c *Config) MissingKeys() []string {
	var missing []string
	for key, value := range c.requiredValues() {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

func (c *Config) requiredValues() map[string]string {
	return map[string]string{
		KeyRepoPath:       c.RepoPath,
		KeyFileHash:       c.FileHash,
		KeyPumlOutputPath: c.PumlOutputPath,
		KeyPngOutputPath:  c.PngOutputPath,
		KeyPlantUMLPath:   c.PlantUMLPath,
	}
}

// ScanOrder returns the parsed scan order. Call after Validate.
func (c *Config) ScanOrder() git.ScanOrder {
	o, _ := git.ParseScanOrder(c.Order)
	return o
}

// HistoryBackend returns the parsed backend. Call after Validate.
func (c *Config) HistoryBackend() git.Backend {
	b, _ := git.ParseBackend(c.Backend)
	return b
}
