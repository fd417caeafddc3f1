// Package cmd provides the command-line interface for memshim.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "memshim",
	Short: "Memshim drives tick-driven memory-system engines through a " +
		"poll-style interface.",
	Long: `Memshim wraps tick-driven memory-system engines (such as ` +
		`cycle-accurate DRAM simulators) behind a poll-style completion ` +
		`interface. It can replay memory traces against a wrapped engine ` +
		`and record per-transaction latencies.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
