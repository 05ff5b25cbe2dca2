package app

import (
	"github.com/spf13/cobra"

	"github.com/andyballingall/pgformat-action/internal/report"
)

func NewFormatCmd(mgr Manager) *cobra.Command {
	var watch, verbose bool
	var reportVal reportValue

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format SQL files in place with pgFormatter",
		Args:  cobra.NoArgs,
		Example: `
FORMAT EVERY SQL FILE BELOW THE CURRENT DIRECTORY
  pgfa format

SELECT FILES
  pgfa format -p 'db/**/*.sql'
  pgfa format -p $'migrations/**\n!migrations/vendor/**'

PASS OPTIONS TO pg_format
  pgfa format -a '--spaces 2 --keyword-case 2'

ONLY FILES CHANGED ON THIS BRANCH
  pgfa format --since origin/main

PRINT A REPORT OF THE RUN
  pgfa format -r text -v
  pgfa format -r json > report.json

KEEP FORMATTING FILES AS THEY CHANGE
  pgfa format --watch`,
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch for changes and re-format changed files")
	cmd.Flags().VarP(&reportVal, "report", "r", "Print a report of the run (text, json, markdown)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List successfully formatted files in the text report")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if watch {
			return mgr.WatchFormat(cmd.Context(), nil)
		}
		summary, err := mgr.Format(cmd.Context())
		if reportVal == "" || summary == nil {
			return err
		}

		noColour, _ := cmd.Flags().GetBool("nocolour")
		reporter, rErr := report.ForFormat(reportVal.String(), mgr.Config().WorkDir, !noColour)
		if rErr != nil {
			return rErr
		}
		if tr, ok := reporter.(*report.TextReporter); ok {
			tr.Verbose = verbose
		}
		if wErr := reporter.Write(cmd.OutOrStdout(), summary); wErr != nil && err == nil {
			err = wErr
		}
		return err
	}

	return cmd
}
