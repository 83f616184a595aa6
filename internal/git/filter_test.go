package git

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewPathFilter_InvalidPatternsReturnError(t *testing.T) {
	t.Run("invalid exclude pattern", func(t *testing.T) {
		if _, err := NewPathFilter(nil, []string{"["}); err == nil {
			t.Fatal("expected error for invalid exclude glob, got nil")
		}
	})

	t.Run("invalid include pattern", func(t *testing.T) {
		if _, err := NewPathFilter([]string{"["}, nil); err == nil {
			t.Fatal("expected error for invalid include glob, got nil")
		}
	})
}

func TestPathFilter_Apply(t *testing.T) {
	paths := []string{"src/a.go", "src/vendor/b.go", "docs/readme.md", `win\path\c.go`}

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{name: "No patterns", want: paths},
		{name: "Include only", include: []string{"src/**"}, want: []string{"src/a.go", "src/vendor/b.go"}},
		{name: "Exclude only", exclude: []string{"**/vendor/**"}, want: []string{"src/a.go", "docs/readme.md", `win\path\c.go`}},
		{name: "Exclude wins", include: []string{"**/*.go"}, exclude: []string{"**/vendor/**"}, want: []string{"src/a.go", `win\path\c.go`}},
		{name: "Backslashes normalized", include: []string{"win/**"}, want: []string{`win\path\c.go`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewPathFilter(tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("NewPathFilter: %v", err)
			}
			got := f.Apply(paths)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply mismatch (-want +got):\n%s", diff)
			}
			// Second pass exercises the cache.
			if diff := cmp.Diff(tt.want, f.Apply(paths)); diff != "" {
				t.Errorf("cached Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPathFilter_NilIsEmpty(t *testing.T) {
	var f *PathFilter
	if !f.IsEmpty() {
		t.Fatal("nil filter should be empty")
	}
	if !f.Matches("anything") {
		t.Fatal("nil filter should match everything")
	}
}
