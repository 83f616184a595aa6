package git

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGitSource answers history queries from the object database using go-git.
type GoGitSource struct {
	repo *git.Repository
	opts ReadOptions
}

// NewGoGitSource opens the repository at opts.RepoPath.
func NewGoGitSource(opts ReadOptions) (*GoGitSource, error) {
	repo, err := git.PlainOpen(opts.RepoPath)
	if err != nil {
		return nil, &HistoryUnavailableError{RepoPath: opts.RepoPath, Err: err}
	}
	return &GoGitSource{repo: repo, opts: opts}, nil
}

// ListCommits walks the history reachable from HEAD.
func (s *GoGitSource) ListCommits(ctx context.Context) ([]CommitInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout())
	defer cancel()

	commits, err := s.listCommits(ctx)
	if err != nil {
		return nil, &HistoryUnavailableError{RepoPath: s.opts.RepoPath, Err: err}
	}
	return commits, nil
}

func (s *GoGitSource) listCommits(ctx context.Context) ([]CommitInfo, error) {
	ref, err := s.repo.Head()
	if err != nil {
		return nil, err
	}

	// Committer-time order matches plain `git log` on merge histories.
	cIter, err := s.repo.Log(&git.LogOptions{From: ref.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, err
	}
	defer cIter.Close()

	var commits []CommitInfo
	err = cIter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, CommitInfo{
			SHA:     c.Hash.String(),
			Message: trimMessage(c.Message),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.opts.Order == OrderOldestFirst {
		slices.Reverse(commits)
	}
	return commits, nil
}

// ChangedFiles diffs a commit against its first parent. A root commit lists
// every file of its tree; merge commits report no changes, as git diff-tree does.
func (s *GoGitSource) ChangedFiles(ctx context.Context, sha string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout())
	defer cancel()

	files, err := s.changedFiles(ctx, sha)
	if err != nil {
		return nil, &CommitLookupError{RepoPath: s.opts.RepoPath, SHA: sha, Err: err}
	}
	return files, nil
}

func (s *GoGitSource) changedFiles(ctx context.Context, sha string) ([]string, error) {
	hash := plumbing.NewHash(sha)
	if hash.IsZero() || hash.String() != sha {
		return nil, fmt.Errorf("invalid commit id %q", sha)
	}

	c, err := s.repo.CommitObject(hash)
	if err != nil {
		return nil, err
	}

	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	if c.NumParents() == 0 {
		return treeFiles(ctx, tree)
	}
	if c.NumParents() > 1 {
		return []string{}, nil
	}

	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, nil)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(changes))
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, sanitizeText(change.To.Name))
		} else {
			files = append(files, sanitizeText(change.From.Name))
		}
	}
	return files, nil
}

func treeFiles(ctx context.Context, tree *object.Tree) ([]string, error) {
	var files []string
	err := tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		files = append(files, sanitizeText(f.Name))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func trimMessage(msg string) string {
	return strings.TrimSpace(sanitizeText(msg))
}
