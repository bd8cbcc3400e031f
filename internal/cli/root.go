// Package cli implements the noor command-line interface using Cobra.
// Each subcommand maps to one engagement operation (record, streak, stats,
// badges) or to running the API server.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "noor",
	Short: "noor - reading progress, streaks and achievements",
	Long: `noor tracks Quran, hadith and dua reading progress.
It keeps daily streaks, awards badges and serves the engagement API.

State lives in $NOOR_HOME (default ~/.noor).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
