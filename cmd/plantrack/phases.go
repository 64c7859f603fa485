package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/plantrack/internal/cli"
	"github.com/fyrsmithlabs/plantrack/internal/phase"
)

var (
	phasesInteractive bool
	phasesFile        string
	phasesQuick       string
)

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Manage the phases of a plan",
}

var phasesAddCmd = &cobra.Command{
	Use:   "add <parent-issue>",
	Short: "Create phases under a plan and cross-link them",
	Long: `Create phase issues under a plan overview. Each phase is labeled
plan:phase, titled with a 1-based ordinal, and cross-linked with the parent
through a pair of comments.

Exactly one input mode must be chosen:

  --interactive        prompt for (name, duration, dependencies) until an
                       empty name or 'done'
  --file F             read pipe-delimited records "name | duration | deps";
                       blank lines and #-comments are skipped ('-' for stdin)
  --quick "A,B,C"      comma-separated names with placeholder details

In batch and quick modes a single phase's failure is logged and the loop
continues; the final report states how many of the requested phases
succeeded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := strconv.Atoi(args[0])
		if err != nil {
			return cli.Exitf(cli.CodeActionNeeded, "parent must be an issue number, got %q", args[0])
		}

		specs, err := readSpecs(cmd)
		if err != nil {
			return err
		}
		if len(specs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no phases to create")
			return nil
		}

		client, err := trackerClient(cmd)
		if err != nil {
			return err
		}

		result, err := phase.NewLinker(client, logger).AddPhases(cmd.Context(), parent, specs)
		if err != nil {
			return cli.Wrap(cli.CodeActionNeeded, err)
		}

		for _, c := range result.Created {
			fmt.Fprintf(cmd.OutOrStdout(), "created #%d %s\n", c.Number, c.Title)
		}
		for _, f := range result.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "failed  phase %d (%s): %v\n", f.Ordinal, f.Name, f.Err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Summary())

		if len(result.Failed) > 0 {
			return cli.Exitf(cli.CodeIncomplete, "%d of %d phases failed", len(result.Failed), result.Requested)
		}
		return nil
	},
}

// readSpecs resolves the selected input mode into an ordered spec list.
func readSpecs(cmd *cobra.Command) ([]phase.Spec, error) {
	modes := 0
	for _, set := range []bool{phasesInteractive, phasesFile != "", phasesQuick != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return nil, cli.Exitf(cli.CodeActionNeeded, "choose exactly one of --interactive, --file, or --quick")
	}

	switch {
	case phasesQuick != "":
		return phase.ParseQuick(phasesQuick), nil
	case phasesFile == "-":
		return phase.ParseBatch(cmd.InOrStdin())
	case phasesFile != "":
		f, err := os.Open(phasesFile)
		if err != nil {
			return nil, cli.Wrap(cli.CodeActionNeeded, err)
		}
		defer f.Close()
		return phase.ParseBatch(f)
	default:
		return phase.ReadInteractive(cmd.InOrStdin(), cmd.OutOrStdout())
	}
}

func init() {
	phasesAddCmd.Flags().BoolVar(&phasesInteractive, "interactive", false, "prompt for phases")
	phasesAddCmd.Flags().StringVar(&phasesFile, "file", "", "read phases from a delimited file ('-' for stdin)")
	phasesAddCmd.Flags().StringVar(&phasesQuick, "quick", "", "comma-separated phase names")
	phasesCmd.AddCommand(phasesAddCmd)
}
