// Package gitops runs git against the site checkout so published
// articles land in version control.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path"
	"strings"
)

// Repo drives git in one working tree via the system git binary.
type Repo struct {
	dir    string
	runner func(ctx context.Context, dir string, args ...string) (string, error)
}

// Option customizes a Repo.
type Option func(*Repo)

// WithRunner overrides command execution (tests).
func WithRunner(runner func(ctx context.Context, dir string, args ...string) (string, error)) Option {
	return func(r *Repo) {
		if runner != nil {
			r.runner = runner
		}
	}
}

// Open wraps an existing working tree. It does not verify the tree is a
// repository; the first git call will surface that.
func Open(dir string, opts ...Option) (*Repo, error) {
	if dir == "" {
		return nil, fmt.Errorf("gitops: repository dir is required")
	}
	r := &Repo{dir: dir, runner: runGit}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("gitops: git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}

// Stage adds the given paths (relative to the repository root).
func (r *Repo) Stage(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := r.runner(ctx, r.dir, args...)
	return err
}

// Commit records the staged changes with the given message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	if message == "" {
		return fmt.Errorf("gitops: commit message is required")
	}
	_, err := r.runner(ctx, r.dir, "commit", "-m", message)
	return err
}

// Push publishes local commits to the default remote.
func (r *Repo) Push(ctx context.Context) error {
	_, err := r.runner(ctx, r.dir, "push")
	return err
}

// HasChanges reports whether the working tree differs from HEAD.
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.runner(ctx, r.dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitMessage derives the deterministic message for a batch of newly
// published article locations: the filename for a single article, a
// count for several.
func CommitMessage(locations []string) string {
	switch len(locations) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("feat: add new article %s", path.Base(locations[0]))
	default:
		return fmt.Sprintf("feat: add %d new articles", len(locations))
	}
}

// PublishArticles stages the locations, commits them with the derived
// message, and pushes when push is set. An empty batch is a no-op.
func (r *Repo) PublishArticles(ctx context.Context, locations []string, push bool) error {
	if len(locations) == 0 {
		return nil
	}
	if err := r.Stage(ctx, locations...); err != nil {
		return err
	}
	if err := r.Commit(ctx, CommitMessage(locations)); err != nil {
		return err
	}
	if push {
		return r.Push(ctx)
	}
	return nil
}
