package app

import (
	"fmt"
)

type ToolNotCachedError struct {
	Tool string
	Root string
}

func (e *ToolNotCachedError) Error() string {
	return fmt.Sprintf("%s is not in the tool cache at %s", e.Tool, e.Root)
}
