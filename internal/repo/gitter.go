// Package repo reads change information from the git repository being formatted, so a run
// can be limited to the SQL files a branch actually touched.
package repo

import (
	"context"
)

// Revision represents a specific git point-in-time (branch, tag or hash).
type Revision string

func (r Revision) String() string { return string(r) }

// Change represents a file status detected in the repository.
type Change struct {
	Path  string // absolute
	IsNew bool   // added, copied or untracked
}

// Gitter defines the interface for git repository operations.
type Gitter interface {
	// ChangedFiles lists the files below dir that were added, copied, modified or renamed
	// between since and the working tree, plus untracked files that are not ignored.
	ChangedFiles(ctx context.Context, since Revision, dir string) ([]Change, error)
}
