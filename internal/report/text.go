package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/andyballingall/pgformat-action/internal/runner"
)

// TextReporter writes a plain text report. Only failed files are listed unless Verbose is set.
type TextReporter struct {
	BaseDir   string
	Verbose   bool
	UseColour bool
}

const (
	colReset     = "\033[0m"
	colRed       = "\033[31m"
	colGreen     = "\033[32m"
	colGrey      = "\033[90m"
	colWhite     = "\033[37m"
	colBoldRed   = "\033[1;31m"
	colBoldGreen = "\033[1;32m"
	colBoldWhite = "\033[1;37m"
)

// cs returns a string which will render with the given colour
// if colourisation is enabled.
func (tr *TextReporter) cs(c, s string) string {
	if !tr.UseColour {
		return s
	}
	return c + s + colReset
}

func (tr *TextReporter) Write(w io.Writer, s *runner.Summary) error {
	divider := strings.Repeat("-", 40)

	fmt.Fprintf(w, "%s\n", divider)
	fmt.Fprint(w, tr.cs(colBoldWhite, "PGFA FORMAT REPORT\n\n"))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Started: "), tr.cs(colWhite, s.StartTime.Format("15:04:05")))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Duration:"), tr.cs(colWhite, s.Duration().String()))
	fmt.Fprintf(w, "%s\n", divider)

	for _, f := range s.Files {
		path := relPath(tr.BaseDir, f.Path)
		if f.OK() {
			if tr.Verbose {
				fmt.Fprintf(w, "%s %s\n", tr.cs(colGreen, "✓"), tr.cs(colGrey, path))
			}
			continue
		}
		fmt.Fprintf(w, "%s %s:\n", tr.cs(colRed, "✗"), tr.cs(colRed, path))
		fmt.Fprintf(w, "    %v\n", f.Err)
	}

	fmt.Fprintf(w, "%s\n", divider)
	summaryLabel := tr.cs(colBoldWhite, "Format summary: ")
	summaryStats := fmt.Sprintf("%d formatted, %d failed", s.Processed-s.Failed, s.Failed)
	statsColor := colBoldGreen
	if s.Failed > 0 {
		statsColor = colBoldRed
	}
	fmt.Fprintf(w, "%s%s\n", summaryLabel, tr.cs(statsColor, summaryStats))
	fmt.Fprintf(w, "%s\n", divider)

	return nil
}
