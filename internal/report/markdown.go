package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/andyballingall/pgformat-action/internal/runner"
)

// MarkdownReporter writes a job summary for GITHUB_STEP_SUMMARY.
type MarkdownReporter struct {
	BaseDir string
}

func (mr *MarkdownReporter) Write(w io.Writer, s *runner.Summary) error {
	var b strings.Builder

	b.WriteString("### pgFormatter\n\n")
	if s.Failed == 0 {
		fmt.Fprintf(&b, ":white_check_mark: Formatted %d files in %s\n", s.Processed, s.Duration())
	} else {
		fmt.Fprintf(&b, ":x: %d of %d files failed to format\n\n", s.Failed, s.Processed)
		b.WriteString("| File | Error |\n|------|-------|\n")
		for _, f := range s.Files {
			if f.OK() {
				continue
			}
			fmt.Fprintf(&b, "| `%s` | %s |\n", relPath(mr.BaseDir, f.Path), cell(f.Err.Error()))
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// cell makes s safe inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
