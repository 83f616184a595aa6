package git

import (
	"context"
	"slices"
)

// MockHistorySource is a test double for the history sources.
// It allows tests to provide predefined commit data without needing a real Git repository.
type MockHistorySource struct {
	Commits    []CommitInfo
	Files      map[string][]string
	ListError  error
	FileErrors map[string]error

	ListCalls int
	FileCalls []string
}

// NewMockHistorySource creates a new MockHistorySource with the given data.
func NewMockHistorySource(commits []CommitInfo, files map[string][]string) *MockHistorySource {
	return &MockHistorySource{
		Commits:    commits,
		Files:      files,
		FileErrors: make(map[string]error),
	}
}

// ListCommits returns the predefined commits or error.
func (m *MockHistorySource) ListCommits(_ context.Context) ([]CommitInfo, error) {
	m.ListCalls++
	if m.ListError != nil {
		return nil, m.ListError
	}
	return slices.Clone(m.Commits), nil
}

// ChangedFiles returns the predefined paths for sha, or its configured error.
func (m *MockHistorySource) ChangedFiles(_ context.Context, sha string) ([]string, error) {
	m.FileCalls = append(m.FileCalls, sha)
	if err, ok := m.FileErrors[sha]; ok {
		return nil, err
	}
	return slices.Clone(m.Files[sha]), nil
}

// Calls returns the total number of queries issued against the mock.
func (m *MockHistorySource) Calls() int {
	return m.ListCalls + len(m.FileCalls)
}
