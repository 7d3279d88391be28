// Package cli wires the retry engine into the retrydb command-line tool.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "retrydb",
	Short: "Retry-protected database session runner",
	Long: `retrydb runs SQL work against MySQL or PostgreSQL inside a retry-protected
session: transient failures (deadlocks, lock waits, dropped connections,
server restarts) are absorbed by exponential backoff, forced reconnects, and
a shrinking per-attempt timeout slice, while real errors surface immediately.

Connection and retry settings come from retrydb.yaml in the config directory;
the password comes from $RETRYDB_PASSWORD or a .env file next to the config.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - Retry gave up after reaching the attempt ceiling
  13 - Retry gave up after the time budget ran out`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for retrydb")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", ".", "Directory containing retrydb.yaml")
	rootCmd.PersistentFlags().Bool("plain", false, "Plain log output without colors (for pipes and CI)")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
