// Package fsh holds the small filesystem and environment helpers shared by the rest of pgfa.
package fsh

import (
	"os"
)

// EnvProvider provides environment variable access.
// GitHub Actions passes workflow inputs to the action as INPUT_* variables, so this is
// also how the formatter inputs reach the configuration layer.
type EnvProvider interface {
	// Get returns the value of the environment variable named by the key.
	Get(key string) string
}

// OSEnvProvider reads from the actual environment using os.Getenv.
type OSEnvProvider struct{}

// NewEnvProvider creates a new OSEnvProvider.
func NewEnvProvider() *OSEnvProvider {
	return &OSEnvProvider{}
}

// Get returns the value of the environment variable named by the key.
func (e *OSEnvProvider) Get(key string) string {
	return os.Getenv(key)
}
