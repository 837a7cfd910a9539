package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata, stamped by the release build via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vidstats version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vidstats %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}
