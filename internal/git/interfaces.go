package git

import (
	"context"
	"fmt"
)

// HistorySource defines the read-only history queries a scan needs.
// This abstraction allows for easier testing and alternative implementations.
type HistorySource interface {
	// ListCommits returns every commit reachable from HEAD, in scan order.
	ListCommits(ctx context.Context) ([]CommitInfo, error)
	// ChangedFiles returns the paths changed by a single commit.
	ChangedFiles(ctx context.Context, sha string) ([]string, error)
}

// Compile-time interface conformance checks.
var (
	_ HistorySource = (*CLISource)(nil)
	_ HistorySource = (*GoGitSource)(nil)
	_ HistorySource = (*MockHistorySource)(nil)
)

// NewHistorySource creates the history source for the given backend.
func NewHistorySource(backend Backend, opts ReadOptions) (HistorySource, error) {
	switch backend {
	case BackendCLI:
		return NewCLISource(opts), nil
	case BackendGoGit:
		return NewGoGitSource(opts)
	default:
		return nil, fmt.Errorf("unsupported history backend %q", backend)
	}
}
