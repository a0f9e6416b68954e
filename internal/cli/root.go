// Package cli wires the splitledger binary: configuration, logging, the
// database and the HTTP API behind cobra subcommands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fkhayef/splitledger/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "splitledger",
	Short: "Shared expense ledger API",
	Long: `splitledger records shared expenses between friends and within groups,
tracks which shares have been settled, and reports who owes whom.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the TOML config file")
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
