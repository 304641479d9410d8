package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Repository provides read access to commits and staged changes.
type Repository interface {
	Root() string
	Staged(ctx context.Context) ([]FileChange, error)
	Commit(ctx context.Context, rev string) (Commit, error)
	ListCommits(ctx context.Context, revRange string, mergeBase bool) ([]CommitRef, error)
}

// Git is the subprocess-backed Repository implementation.
type Git struct {
	root string
	log  *zap.Logger
}

// Open locates the git work tree containing dir.
func Open(ctx context.Context, dir string, log *zap.Logger) (*Git, error) {
	if log == nil {
		log = zap.NewNop()
	}
	out, err := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, &NotARepositoryError{Dir: dir, Err: err}
	}
	root := strings.TrimSpace(out)
	log.Debug("opened repository", zap.String("root", root))
	return &Git{root: root, log: log}, nil
}

// Root returns the work tree root.
func (g *Git) Root() string { return g.root }

// Staged returns the parsed diff of index vs HEAD.
func (g *Git) Staged(ctx context.Context) ([]FileChange, error) {
	out, err := g.git(ctx, "diff", "--cached", "--no-color", "-U3")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached: %w", err)
	}
	return ParseDiff(out)
}

// Commit loads a single commit with its message and changes vs its first parent.
func (g *Git) Commit(ctx context.Context, rev string) (Commit, error) {
	if _, err := g.git(ctx, "rev-parse", "--verify", rev+"^{commit}"); err != nil {
		return Commit{}, &InvalidRevisionError{Revision: rev, Err: err}
	}

	meta, err := g.git(ctx, "show", "-s", "--format=%H%x00%an%x00%B", rev)
	if err != nil {
		return Commit{}, fmt.Errorf("git show %s: %w", rev, err)
	}
	parts := strings.SplitN(meta, "\x00", 3)
	if len(parts) != 3 {
		return Commit{}, fmt.Errorf("unexpected git show output for %s", rev)
	}

	c := Commit{
		SHA:        strings.TrimSpace(parts[0]),
		Author:     parts[1],
		RawMessage: strings.TrimRight(parts[2], "\n"),
	}
	if i := strings.IndexByte(c.RawMessage, '\n'); i >= 0 {
		c.Subject = c.RawMessage[:i]
	} else {
		c.Subject = c.RawMessage
	}

	diff, err := g.git(ctx, "diff", "--no-color", "-U3", rev+"~1", rev)
	if err != nil {
		// Root commit has no parent, fall back to show.
		diff, err = g.git(ctx, "show", "--no-color", "--format=", "-U3", rev)
		if err != nil {
			return Commit{}, fmt.Errorf("git show %s: %w", rev, err)
		}
	}

	c.Changes, err = ParseDiff(diff)
	if err != nil {
		return Commit{}, fmt.Errorf("commit %s: %w", c.ShortSHA(), err)
	}
	g.log.Debug("loaded commit",
		zap.String("sha", c.ShortSHA()),
		zap.Int("files", len(c.Changes)))
	return c, nil
}

// ListCommits returns non-merge commits in a revision range, oldest first.
// If mergeBase is true, ".." is converted to "..." for merge-base comparison.
func (g *Git) ListCommits(ctx context.Context, revRange string, mergeBase bool) ([]CommitRef, error) {
	listRange := revRange
	if mergeBase && strings.Contains(revRange, "..") && !strings.Contains(revRange, "...") {
		listRange = strings.Replace(revRange, "..", "...", 1)
	}

	// Output format: "commit <sha>\n<subject>\n" per commit.
	out, err := g.git(ctx, "rev-list", "--reverse", "--no-merges", "--format=%s", listRange)
	if err != nil {
		return nil, &InvalidRevisionError{Revision: revRange, Err: err}
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}

	lines := strings.Split(out, "\n")
	var commits []CommitRef
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "commit ") {
			continue
		}
		sha := strings.TrimPrefix(line, "commit ")
		var subject string
		if i+1 < len(lines) {
			subject = strings.TrimSpace(lines[i+1])
			i++
		}
		commits = append(commits, CommitRef{SHA: sha, Subject: subject})
	}
	return commits, nil
}

func (g *Git) git(ctx context.Context, args ...string) (string, error) {
	g.log.Debug("git", zap.Strings("args", args))
	return runGit(ctx, g.root, args...)
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
