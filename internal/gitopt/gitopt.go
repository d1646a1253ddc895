// Package gitopt is an optional optimization layered on top of the core
// pipeline: when a working tree is a git repository, the Runner can skip
// reprocessing a path that git reports as clean (tracked, no staged or
// unstaged changes).
//
// gitopt never changes TopMark's answer for a file it does process — it
// only decides whether processing can be skipped outright. A disabled
// Git never skips, so callers that don't want the optimization (or run
// outside a repo) get the pipeline's exact non-git behavior.
package gitopt

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git wraps the git binary via os/exec, scoped to a working tree root.
type Git struct {
	root     string
	disabled bool
}

// New returns a Git scoped to root, failing if git isn't on PATH or root
// isn't inside a work tree.
func New(ctx context.Context, root string) (*Git, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", root, "rev-parse", "--is-inside-work-tree")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git not available or not a repo: %w", err)
	}
	if strings.TrimSpace(string(out)) != "true" {
		return nil, fmt.Errorf("not a git work tree")
	}
	return &Git{root: root}, nil
}

// Disabled returns a Git that never skips — every path is treated as
// touched. Callers use this when git detection fails or the user passed
// a flag to ignore git entirely.
func Disabled() *Git { return &Git{disabled: true} }

// Touched reports whether path has uncommitted changes (staged,
// unstaged, or untracked). A disabled Git always reports true.
func (g *Git) Touched(ctx context.Context, path string) (bool, error) {
	if g.disabled {
		return true, nil
	}
	rel, _ := filepath.Rel(g.root, path)
	out, err := exec.CommandContext(ctx, "git", "-C", g.root, "status", "--porcelain", "--", rel).Output()
	if err != nil {
		return false, fmt.Errorf("git status %s: %w", rel, err)
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// SkipUnchanged reports whether the Runner may skip reprocessing path
// entirely: true only when git considers it clean. Errors running git
// are treated as "don't skip" (fail open to correctness, not speed).
func (g *Git) SkipUnchanged(ctx context.Context, path string) bool {
	touched, err := g.Touched(ctx, path)
	if err != nil {
		return false
	}
	return !touched
}
