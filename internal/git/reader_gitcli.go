package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CLISource answers history queries by invoking the git executable.
type CLISource struct {
	opts ReadOptions
}

// NewCLISource creates a history source backed by the git CLI.
func NewCLISource(opts ReadOptions) *CLISource {
	return &CLISource{opts: opts}
}

// ListCommits runs git log and returns commits in the configured order.
func (s *CLISource) ListCommits(ctx context.Context) ([]CommitInfo, error) {
	// Each commit is prefixed by 0x1e (record separator); the id and the raw
	// message body are separated by NUL so multi-line messages parse reliably.
	const format = "%x1e%H%x00%B"

	args := []string{
		"-C", s.opts.RepoPath,
		"log",
		"--no-color",
		"--pretty=format:" + format,
	}
	if s.opts.Order == OrderOldestFirst {
		args = append(args, "--reverse")
	}

	out, err := s.run(ctx, args)
	if err != nil {
		return nil, &HistoryUnavailableError{RepoPath: s.opts.RepoPath, Err: err}
	}

	commits, err := parseGitLog(out)
	if err != nil {
		return nil, &HistoryUnavailableError{RepoPath: s.opts.RepoPath, Err: err}
	}
	return commits, nil
}

// ChangedFiles runs git diff-tree for a single commit.
func (s *CLISource) ChangedFiles(ctx context.Context, sha string) ([]string, error) {
	sha = strings.TrimSpace(sha)
	if sha == "" || strings.HasPrefix(sha, "-") {
		return nil, &CommitLookupError{RepoPath: s.opts.RepoPath, SHA: sha, Err: fmt.Errorf("invalid commit id %q", sha)}
	}

	args := []string{
		"-C", s.opts.RepoPath,
		"diff-tree",
		"--no-commit-id",
		"--name-only",
		"-r",
		"-z",
		"--root",
		sha,
	}

	out, err := s.run(ctx, args)
	if err != nil {
		return nil, &CommitLookupError{RepoPath: s.opts.RepoPath, SHA: sha, Err: err}
	}
	return parseNameOnly(out), nil
}

// run executes git with a per-call timeout and returns stdout.
func (s *CLISource) run(ctx context.Context, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout())
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.opts.gitPath(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("git %s timed out after %s: %w", args[2], s.opts.timeout(), ctxErr)
			}
			return nil, ctxErr
		}
		msg := sanitizeText(strings.TrimSpace(stderr.String()))
		if msg == "" {
			return nil, fmt.Errorf("git %s failed: %w", args[2], err)
		}
		return nil, fmt.Errorf("git %s failed: %w: %s", args[2], err, msg)
	}
	return stdout.Bytes(), nil
}

// parseGitLog parses the 0x1e/NUL delimited output of ListCommits.
func parseGitLog(out []byte) ([]CommitInfo, error) {
	records := bytes.Split(out, []byte{0x1e})
	commits := make([]CommitInfo, 0, len(records))

	for _, rec := range records {
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}

		sha, body, ok := bytes.Cut(rec, []byte{0x00})
		if !ok {
			return nil, fmt.Errorf("unexpected git log record format: %q", truncate(rec, 60))
		}

		id := strings.TrimSpace(string(sha))
		if id == "" {
			return nil, fmt.Errorf("unexpected git log record: empty commit id")
		}

		commits = append(commits, CommitInfo{
			SHA:     id,
			Message: strings.TrimSpace(sanitizeText(string(body))),
		})
	}

	return commits, nil
}

// parseNameOnly parses NUL-delimited `git diff-tree --name-only -z` output.
func parseNameOnly(out []byte) []string {
	parts := bytes.Split(out, []byte{0x00})
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		p = bytes.TrimLeft(p, "\r\n")
		if len(p) == 0 {
			continue
		}
		paths = append(paths, sanitizeText(string(p)))
	}
	return paths
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
