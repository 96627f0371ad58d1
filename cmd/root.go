// Package cmd defines and implements the CLI commands for the enrichd
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrichd",
		Short: "A queue consumer that enriches link items and stores them in blob storage.",
		Long: `enrichd is a single-consumer pipeline daemon. It blocks on a Redis work
queue, enriches each item through the external detail-lookup API, and
persists the merged record as a JSON object in blob storage under a
timestamp-partitioned key.

Run multiple instances against the same queue to scale out; the broker's
atomic pop delivers each item to exactly one instance.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (optional; settings default to ENRICHD_* environment variables)")

	cmd.AddCommand(newConsumeCmd())
	return cmd
}

// Execute runs the root command. A startup validation failure exits
// nonzero before the consumer loop ever starts.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
