package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/plantrack/internal/taxonomy"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage the planning label taxonomy",
}

var labelsProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the canonical label set in the tracking repository",
	Long: `Create all canonical category:value labels. Labels that already exist
count as success, so the command is safe to re-run; a hard failure aborts
without rolling back labels created earlier in the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := trackerClient(cmd)
		if err != nil {
			return err
		}

		report, err := taxonomy.Provision(cmd.Context(), client, logger)
		for _, name := range report.Created {
			fmt.Fprintf(cmd.OutOrStdout(), "created   %s\n", name)
		}
		for _, name := range report.Existing {
			fmt.Fprintf(cmd.OutOrStdout(), "existing  %s\n", name)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d created, %d already existed\n",
			len(report.Created), len(report.Existing))
		return nil
	},
}

func init() {
	labelsCmd.AddCommand(labelsProvisionCmd)
}
