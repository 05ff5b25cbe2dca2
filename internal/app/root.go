package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyballingall/pgformat-action/internal/config"
	"github.com/andyballingall/pgformat-action/internal/fsh"
	"github.com/andyballingall/pgformat-action/internal/glob"
	"github.com/andyballingall/pgformat-action/internal/repo"
	"github.com/andyballingall/pgformat-action/internal/runner"
	"github.com/andyballingall/pgformat-action/internal/tool"
	"github.com/andyballingall/pgformat-action/internal/validator"
)

// Version is the current version of pgfa, set at build time.
var Version = "dev"

const VersionCmdName = "version"

// httpTimeout bounds a single release download or API call.
const httpTimeout = 5 * time.Minute

var LongDescription = `
pgfa formats the SQL files of a repository in place with pgFormatter (pg_format).
It downloads the requested pgFormatter release into the tool cache once, checks that
perl is available, then runs pg_format -i on every file the glob patterns select.

Inside GitHub Actions it reads the action inputs (INPUT_PATTERN, INPUT_EXTRA-ARGS, ...)
and running pgfa without a command formats the files.
`

// NewRootCmd creates the root command and wires up dependencies.
func NewRootCmd(lazy *LazyManager, ll *slog.LevelVar, stdout, stderr io.Writer, env fsh.EnvProvider) *cobra.Command {
	var debug bool
	var flags configFlags
	inActions := env.Get("GITHUB_ACTIONS") == "true"

	rootCmd := &cobra.Command{
		Use:           "pgfa",
		Short:         "Format SQL files with pgFormatter",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Long:          LongDescription,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for help, completion and version commands
			if cmd.Name() == "help" || isCompletionCommand(cmd) || cmd.Name() == VersionCmdName {
				return nil
			}

			// 1. Setup Logging
			if debug || env.Get("RUNNER_DEBUG") == "1" {
				ll.Set(slog.LevelDebug)
			}

			// Skip if already initialised (e.g., in tests) or if only help will be shown
			if lazy.HasInner() || (!cmd.HasParent() && !inActions) {
				return nil
			}

			// 2. Build Dependencies
			cfg, err := config.New(env, flags.overrides(cmd.Flags()), validator.NewSanthoshCompiler())
			if err != nil {
				return err
			}

			logDir := cfg.WorkDir
			if cfg.InActions {
				logDir = cfg.TempDir
			}
			logger, _, err := setupLogger(stdout, stderr, ll, logDir, env)
			if err != nil {
				logger.Warn("logging to file disabled", "error", err)
			}
			if cfg.Source != "" {
				logger.Debug("configuration loaded", "path", cfg.Source)
			}

			resolver, err := glob.NewResolver(cfg.WorkDir, fsh.NewPathResolver())
			if err != nil {
				return fmt.Errorf("file resolver initialisation failed: %w", err)
			}

			client := &http.Client{Timeout: httpTimeout}
			deps := runner.Deps{
				Fetcher:  tool.NewFetcher(client, cfg.TempDir, logger),
				Executor: runner.NewCLIExecutor(stdout, stderr),
				Releases: tool.NewReleaseResolver(client, cfg.APIURL, cfg.Token),
				Gitter:   repo.NewCLIGitter(),
			}
			cache := tool.NewCache(cfg.ToolCacheDir, cfg.Arch, logger)

			// 3. Hydrate the Lazy Wrapper
			lazy.SetInner(NewCLIManager(cfg, logger, deps, cache, resolver))

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inActions {
				_, err := lazy.Format(cmd.Context())
				return err
			}
			return cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("nocolour", "c", false, "Disable colour in reports")
	flags.register(rootCmd.PersistentFlags())

	// Subcommands
	rootCmd.AddCommand(NewFormatCmd(lazy))
	rootCmd.AddCommand(NewResolveCmd(lazy))
	rootCmd.AddCommand(NewCacheCmd(lazy))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   VersionCmdName,
		Short: "Print the pgfa version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pgfa %s\n", Version)
		},
	}
}

// isCompletionCommand returns true if the command or any of its parents is the "completion" command.
func isCompletionCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}
