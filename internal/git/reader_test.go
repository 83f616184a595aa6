package git

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGoGitSource_ListCommitsAndChangedFiles(t *testing.T) {
	repo := newTestRepo(t)
	h1 := repo.commit("initial\n\nbody", "x.txt")
	h2 := repo.commit("add feature", "x.txt", "dir/y.txt")
	h3 := repo.commit("unrelated", "z.txt")

	src, err := NewGoGitSource(ReadOptions{RepoPath: repo.dir})
	if err != nil {
		t.Fatalf("NewGoGitSource: %v", err)
	}

	commits, err := src.ListCommits(context.Background())
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	want := []CommitInfo{
		{SHA: h3, Message: "unrelated"},
		{SHA: h2, Message: "add feature"},
		{SHA: h1, Message: "initial\n\nbody"},
	}
	if diff := cmp.Diff(want, commits); diff != "" {
		t.Fatalf("ListCommits mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		sha  string
		want []string
	}{
		{sha: h1, want: []string{"x.txt"}},
		{sha: h2, want: []string{"dir/y.txt", "x.txt"}},
		{sha: h3, want: []string{"z.txt"}},
	}
	for _, tt := range tests {
		got, err := src.ChangedFiles(context.Background(), tt.sha)
		if err != nil {
			t.Fatalf("ChangedFiles(%s): %v", tt.sha, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("ChangedFiles(%s) mismatch (-want +got):\n%s", tt.sha, diff)
		}
	}
}

func TestGoGitSource_OldestFirst(t *testing.T) {
	repo := newTestRepo(t)
	h1 := repo.commit("first", "a.txt")
	h2 := repo.commit("second", "a.txt")
	h3 := repo.commit("third", "a.txt")

	src, err := NewGoGitSource(ReadOptions{RepoPath: repo.dir, Order: OrderOldestFirst})
	if err != nil {
		t.Fatalf("NewGoGitSource: %v", err)
	}
	commits, err := src.ListCommits(context.Background())
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	got := []string{commits[0].SHA, commits[1].SHA, commits[2].SHA}
	if diff := cmp.Diff([]string{h1, h2, h3}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestGoGitSource_Errors(t *testing.T) {
	t.Run("not a repository", func(t *testing.T) {
		_, err := NewGoGitSource(ReadOptions{RepoPath: t.TempDir()})
		var hu *HistoryUnavailableError
		if !errors.As(err, &hu) {
			t.Fatalf("expected HistoryUnavailableError, got %v", err)
		}
	})

	t.Run("empty repository", func(t *testing.T) {
		repo := newTestRepo(t)
		src, err := NewGoGitSource(ReadOptions{RepoPath: repo.dir})
		if err != nil {
			t.Fatalf("NewGoGitSource: %v", err)
		}
		_, err = src.ListCommits(context.Background())
		var hu *HistoryUnavailableError
		if !errors.As(err, &hu) {
			t.Fatalf("expected HistoryUnavailableError for repository without HEAD, got %v", err)
		}
	})

	t.Run("unknown commit", func(t *testing.T) {
		repo := newTestRepo(t)
		repo.commit("initial", "a.txt")
		src, err := NewGoGitSource(ReadOptions{RepoPath: repo.dir})
		if err != nil {
			t.Fatalf("NewGoGitSource: %v", err)
		}
		for _, sha := range []string{"0123456789012345678901234567890123456789", "not-a-hash"} {
			_, err := src.ChangedFiles(context.Background(), sha)
			var le *CommitLookupError
			if !errors.As(err, &le) {
				t.Fatalf("ChangedFiles(%q): expected CommitLookupError, got %v", sha, err)
			}
			if le.SHA != sha {
				t.Fatalf("CommitLookupError.SHA = %q, want %q", le.SHA, sha)
			}
		}
	})
}

func TestNewHistorySource(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("initial", "a.txt")

	src, err := NewHistorySource(BackendCLI, ReadOptions{RepoPath: repo.dir})
	if err != nil {
		t.Fatalf("NewHistorySource(cli): %v", err)
	}
	if _, ok := src.(*CLISource); !ok {
		t.Fatalf("expected *CLISource, got %T", src)
	}

	src, err = NewHistorySource(BackendGoGit, ReadOptions{RepoPath: repo.dir})
	if err != nil {
		t.Fatalf("NewHistorySource(gogit): %v", err)
	}
	if _, ok := src.(*GoGitSource); !ok {
		t.Fatalf("expected *GoGitSource, got %T", src)
	}

	if _, err := NewHistorySource(Backend("svn"), ReadOptions{RepoPath: repo.dir}); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

// mergeHistory builds base <- side1 <- side2 and base <- main1, merged at HEAD.
// Commit times follow creation order: base, side1, main1, side2, merge.
func mergeHistory(t *testing.T) (*testRepo, []string) {
	t.Helper()
	repo := newTestRepo(t)
	base := repo.commit("base", "a.txt")
	side1 := repo.commit("side one", "b.txt")
	main1 := repo.commitOnto("main one", []string{base}, "a.txt")
	side2 := repo.commitOnto("side two", []string{side1}, "b.txt")
	merge := repo.commitOnto("merge", []string{main1, side2}, "a.txt")
	return repo, []string{merge, side2, main1, side1, base}
}

func TestGoGitSource_MergeHistoryInCommitterTimeOrder(t *testing.T) {
	repo, want := mergeHistory(t)

	src, err := NewGoGitSource(ReadOptions{RepoPath: repo.dir})
	if err != nil {
		t.Fatalf("NewGoGitSource: %v", err)
	}
	commits, err := src.ListCommits(context.Background())
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	got := make([]string, len(commits))
	for i, c := range commits {
		got[i] = c.SHA
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBackends_AgreeOnMergeHistory(t *testing.T) {
	requireGit(t)
	repo, _ := mergeHistory(t)

	for _, order := range []ScanOrder{OrderNewestFirst, OrderOldestFirst} {
		gogitSrc, err := NewGoGitSource(ReadOptions{RepoPath: repo.dir, Order: order})
		if err != nil {
			t.Fatalf("NewGoGitSource: %v", err)
		}
		cliSrc := NewCLISource(ReadOptions{RepoPath: repo.dir, Order: order})

		fromGoGit, err := gogitSrc.ListCommits(context.Background())
		if err != nil {
			t.Fatalf("gogit ListCommits: %v", err)
		}
		fromCLI, err := cliSrc.ListCommits(context.Background())
		if err != nil {
			t.Fatalf("cli ListCommits: %v", err)
		}
		if diff := cmp.Diff(fromCLI, fromGoGit); diff != "" {
			t.Errorf("%s: backends disagree (-cli +gogit):\n%s", order, diff)
		}
	}
}
