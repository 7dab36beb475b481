// Package git wraps the out-of-process git operations the sync engine
// needs: pull, diff, status, add, commit, push. Every call captures exit
// status and stderr; non-zero exit becomes a typed GitError except the
// tolerated no-op commit case.
package git

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/arnarsson/gitpress/internal/apperr"
)

// Change statuses reported by diff name-status and working-tree status.
const (
	StatusAdded    = 'A'
	StatusModified = 'M'
	StatusDeleted  = 'D'
	StatusRenamed  = 'R'
)

// Change is one changed path between two commits or in the working tree.
type Change struct {
	Status  byte
	Path    string
	OldPath string // set for renames
}

// Client runs git against a single working tree. Author identity is
// lazily auto-configured once per client lifetime if absent.
type Client struct {
	dir         string
	authorName  string
	authorEmail string
	logger      *slog.Logger

	identityOnce sync.Once
	identityErr  error
}

// New creates a client for the repository at dir.
func New(dir, authorName, authorEmail string, logger *slog.Logger) *Client {
	return &Client{dir: dir, authorName: authorName, authorEmail: authorEmail, logger: logger}
}

// run executes git with the given args in the working tree.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return stdout.String(), &apperr.GitError{
			Args:     args,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return stdout.String(), nil
}

// Pull updates the working tree from its upstream.
func (c *Client) Pull(ctx context.Context) error {
	_, err := c.run(ctx, "pull", "--ff-only")
	return err
}

// Head returns the current commit id.
func (c *Client) Head(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DiffNameStatus returns the changes between two commits with rename
// detection enabled.
func (c *Client) DiffNameStatus(ctx context.Context, from, to string) ([]Change, error) {
	out, err := c.run(ctx, "diff", "--name-status", "-M", from, to)
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out), nil
}

// DiffNameOnly returns just the paths changed between two commits.
func (c *Client) DiffNameOnly(ctx context.Context, from, to string) ([]string, error) {
	out, err := c.run(ctx, "diff", "--name-only", from, to)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// Status returns the working-tree status (porcelain format).
func (c *Client) Status(ctx context.Context) ([]Change, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

func parsePorcelain(out string) []Change {
	var changes []Change
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[0]
		if code == ' ' {
			code = line[1]
		}
		if code == '?' {
			code = StatusAdded
		}
		p := strings.TrimSpace(line[3:])
		ch := Change{Status: code, Path: p}
		// Porcelain renames read "R  old -> new".
		if i := strings.Index(p, " -> "); i >= 0 {
			ch.OldPath = p[:i]
			ch.Path = p[i+4:]
		}
		changes = append(changes, ch)
	}
	return changes
}

// Add stages the given paths. All paths are staged when none are given.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	args := []string{"add"}
	if len(paths) == 0 {
		args = append(args, "-A")
	} else {
		args = append(args, "--")
		args = append(args, paths...)
	}
	_, err := c.run(ctx, args...)
	return err
}

// Commit creates a commit with the given message. An empty index
// ("nothing to commit") is not an error.
func (c *Client) Commit(ctx context.Context, message string) error {
	if err := c.ensureIdentity(ctx); err != nil {
		return err
	}
	out, err := c.run(ctx, "commit", "-m", message)
	if err != nil {
		if isNoopCommit(out, err) {
			c.logger.Debug("commit skipped, nothing to commit")
			return nil
		}
		return err
	}
	return nil
}

// Push sends local commits to the upstream.
func (c *Client) Push(ctx context.Context) error {
	_, err := c.run(ctx, "push")
	return err
}

// ensureIdentity configures a local author identity once per client
// lifetime when the repository has none.
func (c *Client) ensureIdentity(ctx context.Context) error {
	c.identityOnce.Do(func() {
		if out, err := c.run(ctx, "config", "user.email"); err == nil && strings.TrimSpace(out) != "" {
			return
		}
		name, email := c.authorName, c.authorEmail
		if name == "" {
			name = "gitpress"
		}
		if email == "" {
			email = "gitpress@localhost"
		}
		if _, err := c.run(ctx, "config", "user.name", name); err != nil {
			c.identityErr = err
			return
		}
		if _, err := c.run(ctx, "config", "user.email", email); err != nil {
			c.identityErr = err
		}
	})
	return c.identityErr
}

func parseNameStatus(out string) []Change {
	var changes []Change
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0][0]
		ch := Change{Status: status, Path: fields[1]}
		// Rename lines read "R<score>\told\tnew".
		if status == StatusRenamed && len(fields) >= 3 {
			ch.OldPath = fields[1]
			ch.Path = fields[2]
		}
		changes = append(changes, ch)
	}
	return changes
}

// isNoopCommit recognizes git's "nothing to commit" failure, which commit
// treats as success. Git prints the notice on stdout with exit code 1.
func isNoopCommit(stdout string, err error) bool {
	var g *apperr.GitError
	if !errors.As(err, &g) {
		return false
	}
	combined := stdout + g.Stderr
	return strings.Contains(combined, "nothing to commit") ||
		strings.Contains(combined, "nothing added to commit")
}
