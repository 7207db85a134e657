// miraged keeps one Mirage account online as a daemon and exposes its
// status and metrics over a local HTTP listener.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "miraged",
		Short: "Mirage IM client daemon",
		Long: `miraged signs one Mirage account in, keeps the session online
across connection losses, and serves client status and Prometheus
metrics on a local HTTP listener.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
