package runner

import "strings"

// InPlaceFlag makes pg_format rewrite the file it is given.
const InPlaceFlag = "-i"

// InvocationArgs returns the formatter arguments for one file: the in-place flag, the
// whitespace-separated extra arguments, then the file. The file is always the last token.
func InvocationArgs(extraArgs, file string) []string {
	extra := strings.Fields(extraArgs)
	args := make([]string, 0, len(extra)+2)
	args = append(args, InPlaceFlag)
	args = append(args, extra...)
	return append(args, file)
}
