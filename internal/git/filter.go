package git

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter applies include/exclude glob patterns to changed paths.
type PathFilter struct {
	include []string
	exclude []string
	cache   map[string]bool
}

// NewPathFilter validates the patterns and returns a filter.
func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &PathFilter{
		include: include,
		exclude: exclude,
		cache:   make(map[string]bool),
	}, nil
}

// IsEmpty reports whether the filter accepts every path.
func (f *PathFilter) IsEmpty() bool {
	return f == nil || (len(f.include) == 0 && len(f.exclude) == 0)
}

// Apply returns the paths accepted by the filter, preserving order.
func (f *PathFilter) Apply(paths []string) []string {
	if f.IsEmpty() {
		return paths
	}
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if f.Matches(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Matches checks if a path passes the include/exclude patterns.
func (f *PathFilter) Matches(path string) bool {
	if f.IsEmpty() {
		return true
	}
	if v, ok := f.cache[path]; ok {
		return v
	}
	v := f.matches(path)
	f.cache[path] = v
	return v
}

func (f *PathFilter) matches(path string) bool {
	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	// Check exclude patterns first
	for _, pattern := range f.exclude {
		if doublestar.MatchUnvalidated(pattern, path) {
			return false
		}
	}

	// If no include patterns, accept all
	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}
