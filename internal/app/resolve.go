package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andyballingall/pgformat-action/internal/runner"
)

func NewResolveCmd(mgr Manager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "List the files format would process, without formatting them",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		files, err := mgr.ResolveFiles(cmd.Context())
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: "+runner.NoFilesWarning)
			return nil
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	}

	return cmd
}
