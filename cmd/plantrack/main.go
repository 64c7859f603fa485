// Package main implements the plantrack CLI, a planning layer on top of
// GitHub Issues.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fyrsmithlabs/plantrack/internal/cli"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// A bare ExitError carries a code but no message; the command
		// already printed its report.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.Code(err))
	}
}
