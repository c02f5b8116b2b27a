package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Fetcher materialises the remote template collection in a local directory.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// GitFetcher fetches the collection with a shallow, single-branch git clone.
type GitFetcher struct {
	Git    string // git binary, "git" when empty
	Branch string // remote default branch when empty
	Stdout io.Writer
	Stderr io.Writer
}

// NewGitFetcher creates a GitFetcher streaming git output to the given writers
func NewGitFetcher(branch string, stdout, stderr io.Writer) *GitFetcher {
	return &GitFetcher{
		Git:    "git",
		Branch: branch,
		Stdout: stdout,
		Stderr: stderr,
	}
}

// CloneArgs returns the git arguments used to clone url into dest.
func (f *GitFetcher) CloneArgs(url, dest string) []string {
	args := []string{"clone", "--depth=1", "--single-branch"}
	if f.Branch != "" {
		args = append(args, "--branch", f.Branch)
	}
	return append(args, url, dest)
}

// Fetch runs git clone. git refuses a non-empty dest, which surfaces here as
// an error.
func (f *GitFetcher) Fetch(ctx context.Context, url, dest string) error {
	git := f.Git
	if git == "" {
		git = "git"
	}

	cmd := exec.CommandContext(ctx, git, f.CloneArgs(url, dest)...)
	cmd.Stdout = f.Stdout
	cmd.Stderr = f.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("git clone exited with status %d: %w", exitErr.ExitCode(), err)
		}
		return err
	}
	return nil
}
