package glob

import (
	"fmt"
)

type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern: %q", e.Pattern)
}

type WalkError struct {
	Path    string
	Wrapped error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("cannot search %s: %v", e.Path, e.Wrapped)
}

func (e *WalkError) Unwrap() error {
	return e.Wrapped
}
