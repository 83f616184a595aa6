// Package relevance selects the commits of a history scan that touched a target file token.
package relevance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masmgr/commitgraph/internal/git"
	"github.com/masmgr/commitgraph/internal/logging"
)

// RelevantCommit is a commit that passed the relevance filter, tagged with
// its position in the filtered sequence.
type RelevantCommit struct {
	git.CommitRecord
	Position int
}

// SkippedCommit records a commit whose changed files could not be read.
type SkippedCommit struct {
	SHA string
	Err error
}

// ScanResult is the outcome of a history scan.
type ScanResult struct {
	Token    string
	Scanned  int
	Relevant []RelevantCommit
	Skipped  []SkippedCommit
}

// HasDependencies reports whether any commit touched the token.
func (r *ScanResult) HasDependencies() bool {
	return len(r.Relevant) > 0
}

// Options configures Scan.
type Options struct {
	// Filter is applied to each commit's changed paths before matching. Nil accepts all paths.
	Filter *git.PathFilter
	Logger *slog.Logger
	// OnProgress is called after each commit is examined.
	OnProgress func(processed, total int)
}

// IsRelevant reports whether token is a case-sensitive substring of any changed path.
// Exact paths, basenames and content-hash fragments are all matched this way.
func IsRelevant(changedPaths []string, token string) bool {
	for _, p := range changedPaths {
		if strings.Contains(p, token) {
			return true
		}
	}
	return false
}

// Scan lists the history of src and keeps the commits relevant to token, in scan order.
//
// A failure to list commits aborts the scan. A failure to read one commit's
// changed files is logged and that commit is skipped. Context cancellation
// aborts the scan with the context's error.
func Scan(ctx context.Context, src git.HistorySource, token string, opts Options) (*ScanResult, error) {
	if token == "" {
		return nil, fmt.Errorf("relevance token is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	commits, err := src.ListCommits(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("listed commits", "count", len(commits))

	result := &ScanResult{Token: token}
	for i, c := range commits {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("history scan aborted after %d of %d commits: %w", i, len(commits), err)
		}

		paths, err := src.ChangedFiles(ctx, c.SHA)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("history scan aborted after %d of %d commits: %w", i, len(commits), ctxErr)
			}
			var lookupErr *git.CommitLookupError
			if !errors.As(err, &lookupErr) {
				err = &git.CommitLookupError{SHA: c.SHA, Err: err}
			}
			logger.Warn("skipping commit: changed files unavailable", "sha", c.SHA, "error", err.Error())
			result.Skipped = append(result.Skipped, SkippedCommit{SHA: c.SHA, Err: err})
		} else {
			paths = opts.Filter.Apply(paths)
			if IsRelevant(paths, token) {
				logger.Debug("relevant commit", "sha", c.SHA, "paths", len(paths))
				result.Relevant = append(result.Relevant, RelevantCommit{
					CommitRecord: git.CommitRecord{Commit: c, ChangedPaths: paths},
					Position:     len(result.Relevant),
				})
			}
		}
		result.Scanned++

		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(commits))
		}
	}

	logger.Info("history scan complete",
		"scanned", result.Scanned,
		"relevant", len(result.Relevant),
		"skipped", len(result.Skipped),
	)
	return result, nil
}
