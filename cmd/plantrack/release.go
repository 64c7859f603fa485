package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/plantrack/internal/cli"
	"github.com/fyrsmithlabs/plantrack/internal/release"
)

var releaseDownstream string

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Monitor downstream release progress",
}

var releaseCheckCmd = &cobra.Command{
	Use:   "check <tracking-issue>",
	Short: "Check downstream pull-request state for a release tracking issue",
	Long: `Parse the version from a tracking issue, classify the time elapsed since
its creation, and search the downstream repository for matching pull
requests.

Exit codes:
  0  a matching downstream PR is merged (released)
  1  waiting: open PRs in flight, or no PR but still within the window
  2  action needed (>12h with no PR) or validation failure`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil {
			return cli.Exitf(cli.CodeActionNeeded, "tracking issue must be a number, got %q", args[0])
		}

		downOwner, downRepo := cfg.Downstream.Owner, cfg.Downstream.Repo
		if releaseDownstream != "" {
			parts := strings.SplitN(releaseDownstream, "/", 2)
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return cli.Exitf(cli.CodeActionNeeded, "--downstream must be owner/repo, got %q", releaseDownstream)
			}
			downOwner, downRepo = parts[0], parts[1]
		}

		client, err := trackerClient(cmd)
		if err != nil {
			return err
		}
		downstream, err := downstreamClient(cmd, downOwner, downRepo)
		if err != nil {
			return err
		}

		monitor := release.NewMonitor(client, downstream, release.Config{
			DefaultSourceURL: fmt.Sprintf("https://github.com/%s/%s", downOwner, downRepo),
		}, logger)

		outcome, err := monitor.Check(cmd.Context(), number)
		if err != nil {
			// Unreachable tracking issue and missing fields share the
			// action-needed code with the >12h path.
			return cli.Wrap(cli.CodeActionNeeded, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "version:    %s\n", outcome.Fields.Version)
		fmt.Fprintf(out, "sha256:     %s\n", outcome.Fields.SHA256)
		fmt.Fprintf(out, "source url: %s\n", outcome.Fields.SourceURL)
		fmt.Fprintf(out, "status:     %s\n", outcome.Status)

		for _, prs := range outcome.OpenPRs {
			fmt.Fprintf(out, "open PR #%d by %s: %s\n", prs.PR.Number, prs.PR.Author, prs.PR.Title)
			for _, check := range prs.Checks {
				state := check.Status
				if check.Conclusion != "" {
					state = check.Conclusion
				}
				fmt.Fprintf(out, "  %-12s %s\n", state, check.Name)
			}
		}

		if outcome.Code != cli.CodeOK {
			return &cli.ExitError{Code: outcome.Code}
		}
		return nil
	},
}

func init() {
	releaseCheckCmd.Flags().StringVar(&releaseDownstream, "downstream", "", "downstream repository as owner/repo (default from config)")
	releaseCmd.AddCommand(releaseCheckCmd)
}
