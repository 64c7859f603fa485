package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/cli"
	"github.com/fyrsmithlabs/plantrack/internal/config"
	"github.com/fyrsmithlabs/plantrack/internal/logging"
	"github.com/fyrsmithlabs/plantrack/internal/tracker"
)

var (
	// Persistent flags.
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	// Populated by the persistent pre-run for every subcommand.
	cfg    *config.Config
	logger *zap.Logger

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "plantrack",
	Short: "Project planning on top of GitHub Issues",
	Long: `plantrack tracks plans, their phases, and completion records as GitHub
issues, distinguished only by a fixed category:value label taxonomy. The
tracker is the sole system of record; every read is a fresh query.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return cli.Wrap(cli.CodeActionNeeded, err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return cli.Wrap(cli.CodeActionNeeded, err)
		}

		if noColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/plantrack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(phasesCmd)
	rootCmd.AddCommand(closeoutCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(releaseCmd)
}

// trackerClient builds the authenticated client for the tracking
// repository. Missing credentials are a prerequisite error surfaced before
// any other work.
func trackerClient(cmd *cobra.Command) (*tracker.GitHub, error) {
	client, err := tracker.NewGitHub(cmd.Context(), cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Token, logger)
	if err != nil {
		return nil, cli.Wrap(cli.CodeActionNeeded, err)
	}
	return client, nil
}

// downstreamClient builds the client for the downstream repository the
// release monitor searches.
func downstreamClient(cmd *cobra.Command, owner, repo string) (*tracker.GitHub, error) {
	client, err := tracker.NewGitHub(cmd.Context(), owner, repo, cfg.GitHub.Token, logger)
	if err != nil {
		return nil, cli.Wrap(cli.CodeActionNeeded, err)
	}
	return client, nil
}
