package git

import "fmt"

// HistoryUnavailableError reports that the commit list of a repository could not be read.
type HistoryUnavailableError struct {
	RepoPath string
	Err      error
}

func (e *HistoryUnavailableError) Error() string {
	return fmt.Sprintf("history unavailable for repository %s: %v", e.RepoPath, e.Err)
}

func (e *HistoryUnavailableError) Unwrap() error { return e.Err }

// CommitLookupError reports that the changed files of one commit could not be read.
type CommitLookupError struct {
	RepoPath string
	SHA      string
	Err      error
}

func (e *CommitLookupError) Error() string {
	return fmt.Sprintf("changed files lookup failed for commit %s in %s: %v", e.SHA, e.RepoPath, e.Err)
}

func (e *CommitLookupError) Unwrap() error { return e.Err }
