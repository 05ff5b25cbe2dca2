package config

import (
	"fmt"
)

type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("configuration file %s does not exist", e.Path)
}

type InvalidYAMLError struct {
	Path    string
	Wrapped error
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("%s is not a valid yaml document: %v", e.Path, e.Wrapped)
}

func (e *InvalidYAMLError) Unwrap() error {
	return e.Wrapped
}

// InvalidConfigError reports a configuration file that does not match the config schema.
type InvalidConfigError struct {
	Path    string
	Wrapped error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s is not a valid pgfa configuration: %v", e.Path, e.Wrapped)
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Wrapped
}

type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("configuration is missing required property: %s", e.Property)
}

// InvalidInputError reports an action input whose value cannot be interpreted.
type InvalidInputError struct {
	Name  string
	Value string
	Want  string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("input %s has invalid value '%s': expected %s", e.Name, e.Value, e.Want)
}

type InvalidToolError struct {
	Wrapped error
}

func (e *InvalidToolError) Error() string {
	return fmt.Sprintf("tool configuration is invalid: %v", e.Wrapped)
}

func (e *InvalidToolError) Unwrap() error {
	return e.Wrapped
}

type InvalidURLError struct {
	Property string
	Value    string
	Wrapped  error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("%s has invalid url '%s': %v", e.Property, e.Value, e.Wrapped)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Wrapped
}
