package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/plantrack/internal/cli"
	"github.com/fyrsmithlabs/plantrack/internal/phase"
)

var closeoutTitle string

var closeoutCmd = &cobra.Command{
	Use:   "closeout",
	Short: "Manage plan completion records",
}

var closeoutCreateCmd = &cobra.Command{
	Use:   "create <parent-issue>",
	Short: "Create the completion record for a plan",
	Long: `Create a closeout issue labeled plan:closeout under a plan overview,
cross-linked with the parent the same way phases are. A plan has at most
one closeout by convention; this is not enforced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := strconv.Atoi(args[0])
		if err != nil {
			return cli.Exitf(cli.CodeActionNeeded, "parent must be an issue number, got %q", args[0])
		}

		client, err := trackerClient(cmd)
		if err != nil {
			return err
		}

		created, err := phase.NewLinker(client, logger).CreateCloseout(cmd.Context(), parent, closeoutTitle)
		if err != nil {
			return cli.Wrap(cli.CodeActionNeeded, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "closeout #%d created: %s\n", created.Number, created.URL)
		return nil
	},
}

func init() {
	closeoutCreateCmd.Flags().StringVar(&closeoutTitle, "title", "", "closeout title (default \"Closeout: <plan title>\")")
	closeoutCmd.AddCommand(closeoutCreateCmd)
}
