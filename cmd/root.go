// Package cmd implements the ritmo CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🫀"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "ritmo",
	Short: logo + " ritmo — daily emotional accompaniment",
	Long: logo + " ritmo — a conversational companion that accompanies vulnerable users\n" +
		"day to day, watching for emotional deterioration and knowing when to reach out.",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(resourcesCmd)
}
