// Package report renders the outcome of a format run.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andyballingall/pgformat-action/internal/runner"
)

// Reporter writes a run summary in one output format.
type Reporter interface {
	Write(w io.Writer, s *runner.Summary) error
}

// Formats accepted by ForFormat.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// UnknownFormatError is returned for a report format that has no reporter.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown report format '%s': expected %s, %s or %s",
		e.Format, FormatText, FormatJSON, FormatMarkdown)
}

// ForFormat returns the reporter for format. Paths are shown relative to baseDir.
func ForFormat(format, baseDir string, useColour bool) (Reporter, error) {
	switch format {
	case FormatText:
		return &TextReporter{BaseDir: baseDir, UseColour: useColour}, nil
	case FormatJSON:
		return &JSONReporter{}, nil
	case FormatMarkdown:
		return &MarkdownReporter{BaseDir: baseDir}, nil
	}
	return nil, &UnknownFormatError{Format: format}
}

// relPath shows p relative to base when p is below it.
func relPath(base, p string) string {
	if base == "" {
		return p
	}
	r, err := filepath.Rel(base, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(r)
}
