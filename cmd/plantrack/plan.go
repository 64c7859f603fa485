package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/plantrack/internal/cli"
	"github.com/fyrsmithlabs/plantrack/internal/plan"
)

var (
	planPriority string
	planDomain   string
	planRepoPath string
	planNoBranch bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage plan overviews",
}

var planCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a plan overview and its working branch",
	Long: `Create a plan overview issue labeled plan:overview with status:planning,
the given priority and domain, and self-assignment, then create (or switch
to) a working branch named after the issue.

Examples:
  plantrack plan create "Fix gravity solver" --priority high --domain physics
  plantrack plan create "Document data formats" --domain docs --no-branch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := trackerClient(cmd)
		if err != nil {
			return err
		}

		gitPath := planRepoPath
		if gitPath == "" {
			gitPath = cfg.Git.Path
		}
		if planNoBranch {
			gitPath = ""
		}

		manager := plan.NewManager(client, plan.Config{
			GitPath:         gitPath,
			DefaultPriority: cfg.Defaults.Priority,
			DefaultDomain:   cfg.Defaults.Domain,
		}, logger)

		overview, err := manager.CreateOverview(cmd.Context(), plan.Request{
			Title:    args[0],
			Priority: planPriority,
			Domain:   planDomain,
		})
		if err != nil {
			if overview == nil {
				// Nothing was created: validation or creation failure.
				return cli.Wrap(cli.CodeActionNeeded, err)
			}
			// Partial state: issue exists, branch failed.
			fmt.Fprintf(cmd.OutOrStdout(), "plan #%d created: %s\n", overview.Number, overview.URL)
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "plan #%d created: %s\n", overview.Number, overview.URL)
		if overview.Branch != "" {
			verb := "switched to existing"
			if overview.BranchCreated {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s branch %s\n", verb, overview.Branch)
		}
		return nil
	},
}

func init() {
	planCreateCmd.Flags().StringVar(&planPriority, "priority", "", "priority: critical, high, medium, low (default medium)")
	planCreateCmd.Flags().StringVar(&planDomain, "domain", "", "domain: physics, data, plotting, testing, infrastructure, docs (default infrastructure)")
	planCreateCmd.Flags().StringVar(&planRepoPath, "repo-path", "", "local working copy for the branch (default from config)")
	planCreateCmd.Flags().BoolVar(&planNoBranch, "no-branch", false, "skip branch creation")
	planCmd.AddCommand(planCreateCmd)
}
