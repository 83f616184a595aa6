package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepo wraps a temporary repository created with go-git.
type testRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
	now  time.Time
	shas []string
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt, now: time.Now().Add(-24 * time.Hour)}
}

// commit writes the given files and commits them, returning the commit id.
func (r *testRepo) commit(msg string, files ...string) string {
	r.t.Helper()
	return r.commitOnto(msg, nil, files...)
}

// commitOnto is commit with explicit parents. Nil parents means HEAD.
func (r *testRepo) commitOnto(msg string, parents []string, files ...string) string {
	r.t.Helper()

	for _, rel := range files {
		full := filepath.Join(r.dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			r.t.Fatalf("MkdirAll: %v", err)
		}
		content := msg + " " + rel + " " + r.now.String() + "\n"
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			r.t.Fatalf("WriteFile: %v", err)
		}
		if _, err := r.wt.Add(rel); err != nil {
			r.t.Fatalf("Add: %v", err)
		}
	}

	r.now = r.now.Add(time.Minute)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: r.now}
	opts := &gogit.CommitOptions{Author: sig, Committer: sig}
	for _, p := range parents {
		opts.Parents = append(opts.Parents, plumbing.NewHash(p))
	}
	hash, err := r.wt.Commit(msg, opts)
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	r.shas = append(r.shas, hash.String())
	return hash.String()
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
}
