package git

import (
	"fmt"
	"strings"
	"time"
)

// CommitInfo represents minimal information about a Git commit.
type CommitInfo struct {
	SHA     string
	Message string
}

// ShortSHA returns the first seven characters of the commit id.
func (c CommitInfo) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// CommitRecord bundles a commit with the paths it changed.
type CommitRecord struct {
	Commit       CommitInfo
	ChangedPaths []string
}

// ScanOrder is the order in which commits are returned by a history scan.
type ScanOrder int

const (
	// OrderNewestFirst is git's native log order.
	OrderNewestFirst ScanOrder = iota
	// OrderOldestFirst is the log order reversed (git log --reverse).
	OrderOldestFirst
)

// String returns the configuration spelling of the order.
func (o ScanOrder) String() string {
	switch o {
	case OrderNewestFirst:
		return "newest-first"
	case OrderOldestFirst:
		return "oldest-first"
	default:
		return "unknown"
	}
}

// ParseScanOrder parses an order name. An empty string selects newest-first.
func ParseScanOrder(s string) (ScanOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest-first", "newest", "desc":
		return OrderNewestFirst, nil
	case "oldest-first", "oldest", "asc", "reverse":
		return OrderOldestFirst, nil
	default:
		return OrderNewestFirst, fmt.Errorf("invalid scan order %q (expected newest-first or oldest-first)", s)
	}
}

// Backend selects the history source implementation.
type Backend string

const (
	// BackendCLI shells out to the git executable.
	BackendCLI Backend = "cli"
	// BackendGoGit reads the object database in-process with go-git.
	BackendGoGit Backend = "gogit"
)

// ParseBackend parses a backend name. An empty string selects the git CLI.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cli", "git":
		return BackendCLI, nil
	case "gogit", "go-git":
		return BackendGoGit, nil
	default:
		return BackendCLI, fmt.Errorf("invalid backend %q (expected cli or gogit)", s)
	}
}

// DefaultTimeout bounds each external history query.
const DefaultTimeout = 30 * time.Second

// ReadOptions configures a history source.
type ReadOptions struct {
	RepoPath string
	Order    ScanOrder
	Timeout  time.Duration // Per query; zero means DefaultTimeout
	GitPath  string        // git executable for the CLI backend; empty means "git"
}

func (o ReadOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o ReadOptions) gitPath() string {
	if o.GitPath == "" {
		return "git"
	}
	return o.GitPath
}

// sanitizeText replaces byte sequences that are not valid UTF-8.
func sanitizeText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
