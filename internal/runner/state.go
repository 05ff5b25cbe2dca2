// Package runner drives a formatting run: it checks the interpreter the formatter needs,
// makes the formatter available from the tool cache, resolves the files and invokes the
// formatter on each of them in turn.
package runner

// State is a step of a Driver run. A run moves forward through the states in order and
// ends in Done or Failed.
type State int

const (
	Init State = iota
	DependencyCheck
	ToolReady
	FilesResolved
	Processing
	Done
	Failed
)

var stateNames = [...]string{
	Init:            "init",
	DependencyCheck: "dependency-check",
	ToolReady:       "tool-ready",
	FilesResolved:   "files-resolved",
	Processing:      "processing",
	Done:            "done",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
