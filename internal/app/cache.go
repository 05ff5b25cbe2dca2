package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCacheCmd(mgr Manager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the pgFormatter tool cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the cached versions of pgFormatter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			versions, err := mgr.CachedVersions()
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "No cached versions of %s\n", mgr.Config().Tool.Name)
				return nil
			}
			for _, v := range versions {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the path of the cached pg_format executable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := mgr.CachedToolPath(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	})

	return cmd
}
