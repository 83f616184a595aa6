// Package bugfix classifies commits as fixes by matching their messages.
package bugfix

import (
	"regexp"
	"strings"

	"github.com/masmgr/commitgraph/internal/relevance"
)

// DefaultPatterns matches conventional fix and close keywords.
var DefaultPatterns = []string{`\b(fix(es|ed)?|close(s|d)?)\b`}

// DefaultKeyword in a pattern list stands for DefaultPatterns.
const DefaultKeyword = "default"

// expand replaces every DefaultKeyword entry with DefaultPatterns.
func expand(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if strings.EqualFold(strings.TrimSpace(p), DefaultKeyword) {
			out = append(out, DefaultPatterns...)
			continue
		}
		out = append(out, p)
	}
	return out
}

// Result holds the fix commits found among a set of commits.
type Result struct {
	// Commits is the set of commit SHAs identified as fixes.
	Commits map[string]struct{}
	// Total is the number of fix commits detected.
	Total int
}

// Contains reports whether sha was classified as a fix.
func (r *Result) Contains(sha string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Commits[sha]
	return ok
}

// Detector detects fix commits by matching commit messages against regex patterns.
type Detector struct {
	patterns []*regexp.Regexp
}

// NewDetector creates a new Detector from a list of regex pattern strings.
// Patterns are compiled as case-insensitive and the entry "default" expands to
// DefaultPatterns. Returns an error if any pattern fails to compile.
func NewDetector(patterns []string) (*Detector, error) {
	patterns = expand(patterns)
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Detector{patterns: compiled}, nil
}

// IsEmpty reports whether the detector has no patterns.
func (d *Detector) IsEmpty() bool {
	return d == nil || len(d.patterns) == 0
}

// IsBugfix returns true if the given commit message matches any of the detector's patterns.
func (d *Detector) IsBugfix(message string) bool {
	if d == nil {
		return false
	}
	for _, re := range d.patterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// Detect classifies the given commits.
func (d *Detector) Detect(commits []relevance.RelevantCommit) *Result {
	result := &Result{Commits: make(map[string]struct{})}
	if d.IsEmpty() {
		return result
	}

	for _, c := range commits {
		if _, seen := result.Commits[c.Commit.SHA]; seen {
			continue
		}
		if !d.IsBugfix(c.Commit.Message) {
			continue
		}
		result.Commits[c.Commit.SHA] = struct{}{}
		result.Total++
	}
	return result
}
