package glob

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/andyballingall/pgformat-action/internal/fsh"
)

// Resolver expands patterns against the filesystem.
type Resolver struct {
	baseDir string
	paths   fsh.PathResolver
}

// NewResolver creates a Resolver for patterns relative to baseDir.
func NewResolver(baseDir string, paths fsh.PathResolver) (*Resolver, error) {
	abs, err := paths.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	return &Resolver{baseDir: abs, paths: paths}, nil
}

// Compile parses pattern relative to the resolver's base directory.
func (r *Resolver) Compile(pattern string) (*PatternSet, error) {
	return Parse(pattern, r.baseDir, r.paths.HomeDir)
}

// Resolve returns the absolute paths of the files selected by pattern.
//
// Directories are never returned. Each directory is read in lexical order, so the result
// is stable for an unchanged tree. With followSymlinks, symlinked directories are searched
// (a symlink back to an ancestor is skipped); without it they are not entered. Symlinks to
// files are returned in both modes. No match is not an error.
func (r *Resolver) Resolve(pattern string, followSymlinks bool) ([]string, error) {
	set, err := r.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return r.Expand(set, followSymlinks)
}

// Expand walks the roots of a compiled set.
func (r *Resolver) Expand(set *PatternSet, followSymlinks bool) ([]string, error) {
	w := &walker{
		set:    set,
		follow: followSymlinks,
		paths:  r.paths,
		seen:   make(map[string]struct{}),
		files:  []string{},
	}

	for _, root := range set.Roots() {
		if err := w.walkRoot(root); err != nil {
			return nil, err
		}
	}
	return w.files, nil
}

type walker struct {
	set    *PatternSet
	follow bool
	paths  fsh.PathResolver
	seen   map[string]struct{}
	files  []string
}

func (w *walker) walkRoot(root string) error {
	info, err := os.Lstat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &WalkError{Path: root, Wrapped: err}
	}
	return w.visit(root, info, nil)
}

// chain holds the canonical paths of the directories above the current one.
func (w *walker) visit(p string, info fs.FileInfo, chain []string) error {
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Stat(p)
		if err != nil {
			// broken links select nothing
			return nil
		}
		if !target.IsDir() {
			w.add(p)
			return nil
		}
		if !w.follow {
			return nil
		}
		return w.walkDir(p, chain)
	}

	if info.IsDir() {
		return w.walkDir(p, chain)
	}
	if info.Mode().IsRegular() {
		w.add(p)
	}
	return nil
}

func (w *walker) walkDir(dir string, chain []string) error {
	if w.follow {
		real, err := w.paths.CanonicalPath(dir)
		if err != nil {
			return &WalkError{Path: dir, Wrapped: err}
		}
		if slices.Contains(chain, real) {
			return nil
		}
		chain = append(slices.Clip(chain), real)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return &WalkError{Path: dir, Wrapped: err}
	}

	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		info, iErr := entry.Info()
		if errors.Is(iErr, fs.ErrNotExist) {
			continue
		}
		if iErr != nil {
			return &WalkError{Path: p, Wrapped: iErr}
		}
		if err = w.visit(p, info, chain); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) add(p string) {
	if _, ok := w.seen[p]; ok {
		return
	}
	w.seen[p] = struct{}{}
	if w.set.Match(p) {
		w.files = append(w.files, p)
	}
}
