package fsh

import (
	"os"
	"path/filepath"
)

// PathResolver is the filesystem view the file resolver needs: anchoring relative
// patterns, expanding a leading ~ and detecting symlink loops.
type PathResolver interface {
	// CanonicalPath returns the absolute path of path with every symlink resolved.
	CanonicalPath(path string) (string, error)
	// Abs anchors path to the current directory.
	Abs(path string) (string, error)
	// HomeDir is the directory a leading ~ in a pattern expands to.
	HomeDir() (string, error)
}

// OSPathResolver answers from the real filesystem and the process environment.
type OSPathResolver struct{}

// NewPathResolver returns the resolver used outside tests.
func NewPathResolver() *OSPathResolver {
	return &OSPathResolver{}
}

func (r *OSPathResolver) CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (r *OSPathResolver) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (r *OSPathResolver) HomeDir() (string, error) {
	return os.UserHomeDir()
}
