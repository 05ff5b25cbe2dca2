package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/andyballingall/pgformat-action/internal/fsh"
)

func Run(ctx context.Context, args []string, stdout, stderr io.Writer, envProvider fsh.EnvProvider) error {
	logLevel := &slog.LevelVar{}
	logLevel.Set(slog.LevelInfo)

	// Local lazy instance ensures t.Parallel() safety
	lazy := &LazyManager{}

	if envProvider == nil {
		envProvider = fsh.NewEnvProvider()
	}

	rootCmd := NewRootCmd(lazy, logLevel, stdout, stderr, envProvider)
	rootCmd.SetArgs(args[1:]) // Skip the program name
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print error once (SilenceErrors is set). Inside Actions it becomes an error annotation.
		if envProvider.Get("GITHUB_ACTIONS") == "true" {
			fmt.Fprintf(stdout, "::error::%s\n", escapeData(err.Error()))
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return err
	}

	return nil
}
