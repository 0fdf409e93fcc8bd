// rgctl drives the readiness engine from the command line, without an MCP
// host: start a session, answer questions, inspect status, render reports,
// scan requirement text, and search prior sessions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readygate/readygate/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:           "rgctl",
		Short:         "Drive the readygate questioning engine from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       server.Version,
	}

	root.AddCommand(
		newStartCmd(),
		newAnswerCmd(),
		newStatusCmd(),
		newReportCmd(),
		newScanCmd(),
		newSearchCmd(),
		newAmendCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
