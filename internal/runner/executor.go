package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Executor runs an external command to completion.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) error
}

// CLIExecutor runs commands with os/exec, streaming their output. Each command line is
// echoed first in the form the Actions toolkit uses, "[command]<line>".
type CLIExecutor struct {
	stdout io.Writer
	stderr io.Writer
}

func NewCLIExecutor(stdout, stderr io.Writer) *CLIExecutor {
	return &CLIExecutor{stdout: stdout, stderr: stderr}
}

// Run returns a *CommandError when the command cannot start or exits non-zero.
// Cancelling ctx kills the process.
func (e *CLIExecutor) Run(ctx context.Context, name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	fmt.Fprintf(e.stdout, "[command]%s\n", line)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return &CommandError{Command: line, ExitCode: exitErr.ExitCode(), Wrapped: err}
		}
		return &CommandError{Command: line, ExitCode: -1, Wrapped: err}
	}
	return nil
}

// exitCode extracts the exit code carried by err, or -1.
func exitCode(err error) int {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.ExitCode
	}
	return -1
}
