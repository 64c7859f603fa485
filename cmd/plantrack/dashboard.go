package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/plantrack/internal/cli"
	"github.com/fyrsmithlabs/plantrack/internal/dashboard"
)

var (
	dashSummaryOnly bool
	dashDetailed    bool
	dashRecsOnly    bool
	dashStatus      string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the current planning state",
	Long: `Render a read-only view of all plans. Every invocation re-queries the
tracker; nothing is cached.

Examples:
  plantrack dashboard
  plantrack dashboard --summary
  plantrack dashboard --detailed --status in-progress
  plantrack dashboard --recommendations`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := dashboard.ModeFull
		switch {
		case dashSummaryOnly && (dashDetailed || dashRecsOnly),
			dashDetailed && dashRecsOnly:
			return cli.Exitf(cli.CodeActionNeeded, "--summary, --detailed, and --recommendations are mutually exclusive")
		case dashSummaryOnly:
			mode = dashboard.ModeSummary
		case dashDetailed:
			mode = dashboard.ModeDetailed
		case dashRecsOnly:
			mode = dashboard.ModeRecommendations
		}

		client, err := trackerClient(cmd)
		if err != nil {
			return err
		}

		d := dashboard.New(client, logger)
		return d.Render(cmd.Context(), cmd.OutOrStdout(), mode, dashStatus)
	},
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashSummaryOnly, "summary", false, "show only the counts")
	dashboardCmd.Flags().BoolVar(&dashDetailed, "detailed", false, "add a phase listing per plan")
	dashboardCmd.Flags().BoolVar(&dashRecsOnly, "recommendations", false, "show only the recommendations")
	dashboardCmd.Flags().StringVar(&dashStatus, "status", "", "restrict to one status value")
}
