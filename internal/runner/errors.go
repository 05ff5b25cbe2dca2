package runner

import (
	"fmt"
	"strings"
)

// CommandError reports a process that could not be started or exited non-zero.
// ExitCode is -1 when the process never ran.
type CommandError struct {
	Command  string
	ExitCode int
	Wrapped  error
}

func (e *CommandError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("cannot run %s: %v", e.Command, e.Wrapped)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

type DependencyMissingError struct {
	Command string
	Wrapped error
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("required dependency '%s' is missing or broken: %v", e.Command, e.Wrapped)
}

func (e *DependencyMissingError) Unwrap() error {
	return e.Wrapped
}

// InvocationError reports a formatter run that failed. File is empty for the self-check.
type InvocationError struct {
	Tool     string
	File     string
	ExitCode int
	Wrapped  error
}

func (e *InvocationError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s is not runnable: %v", e.Tool, e.Wrapped)
	}
	return fmt.Sprintf("formatting %s failed with exit code %d", e.File, e.ExitCode)
}

func (e *InvocationError) Unwrap() error {
	return e.Wrapped
}

// FilesFailedError ends a continue-on-error run in which at least one file failed.
type FilesFailedError struct {
	Summary *Summary
}

func (e *FilesFailedError) Error() string {
	failed := e.Summary.FailedPaths()
	return fmt.Sprintf("%d of %d files failed to format: %s",
		len(failed), e.Summary.Processed, strings.Join(failed, ", "))
}

type NoReleaseResolverError struct {
	Repository string
}

func (e *NoReleaseResolverError) Error() string {
	return fmt.Sprintf("cannot resolve the latest release of %s without a release resolver", e.Repository)
}
