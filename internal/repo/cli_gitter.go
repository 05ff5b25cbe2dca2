package repo

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// absPath is a variable for filepath.Abs to allow mocking in tests.
var absPath = filepath.Abs

// CLIGitter is the concrete implementation of Gitter using the git CLI.
type CLIGitter struct{}

// NewCLIGitter creates a new CLIGitter instance.
func NewCLIGitter() *CLIGitter {
	return &CLIGitter{}
}

// gitRoot finds the top-level directory of the git repository containing dir.
func (g *CLIGitter) gitRoot(ctx context.Context, dir string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("failed to find git root: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (g *CLIGitter) ChangedFiles(ctx context.Context, since Revision, dir string) ([]Change, error) {
	absDir, err := absPath(dir)
	if err != nil {
		return nil, err
	}

	root, err := g.gitRoot(ctx, absDir)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // revision is passed as a single argument, never through a shell
	diff := exec.CommandContext(ctx, "git", "-C", absDir, "diff", "--name-status", "--diff-filter=ACMR",
		since.String(), "--", ".")
	out, err := diff.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	var changes []Change
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		// <status>\t<path> or, for renames and copies, <status>\t<old>\t<new>
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		changes = append(changes, Change{
			// git diff returns paths relative to the repo root.
			Path:  filepath.Join(root, fields[len(fields)-1]),
			IsNew: strings.HasPrefix(status, "A") || strings.HasPrefix(status, "C"),
		})
	}

	ls := exec.CommandContext(ctx, "git", "-C", absDir, "ls-files", "--others", "--exclude-standard", "--full-name", "--", ".")
	out, err = ls.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}
	for _, p := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if p == "" {
			continue
		}
		changes = append(changes, Change{Path: filepath.Join(root, p), IsNew: true})
	}

	return changes, nil
}

// FilterChanged keeps the files that appear in changes, preserving their order. Paths are
// compared after resolving symbolic links, since git reports the real location.
func FilterChanged(files []string, changes []Change) []string {
	changed := make(map[string]struct{}, len(changes))
	for _, c := range changes {
		changed[canonical(c.Path)] = struct{}{}
	}

	kept := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := changed[canonical(f)]; ok {
			kept = append(kept, f)
		}
	}
	return kept
}

func canonical(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return filepath.Clean(p)
}
