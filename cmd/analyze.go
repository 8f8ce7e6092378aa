package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritmolabs/ritmo/internal/config"
	"github.com/ritmolabs/ritmo/internal/history"
	"github.com/ritmolabs/ritmo/internal/metrics"
)

var analyzeWindowDays int

var analyzeCmd = &cobra.Command{
	Use:   "analyze <user-id>",
	Short: "Compute a user's longitudinal metrics and alerts",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeWindowDays, "window", 7, "Lookback window in days")
}

func runAnalyze(_ *cobra.Command, args []string) error {
	userID := args[0]
	ctx := context.Background()

	store, err := history.Open(config.DataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	checkins, err := store.Checkins(ctx, userID, analyzeWindowDays)
	if err != nil {
		return err
	}
	m := metrics.Compute(checkins, analyzeWindowDays)
	alerts := metrics.DetectAlerts(m, checkins)
	report := metrics.BuildReport(m, alerts)

	fmt.Printf("%s Analysis for %s (last %d days)\n\n", logo, userID, analyzeWindowDays)
	fmt.Printf("  Check-ins:  %d (%d good, %d normal, %d difficult)\n",
		m.Total, m.GoodDays, m.NormalDays, m.DifficultDays)
	fmt.Printf("  Compliance: %.1f%%\n", m.Compliance)
	fmt.Printf("  Streak:     %d difficult in a row\n", m.Streak)
	fmt.Printf("  Trend:      %s\n", m.Trend)
	fmt.Printf("  Score:      %d/100 (%s)\n", report.Score, report.Level)

	if len(alerts) > 0 {
		fmt.Println("\nAlerts:")
		for _, a := range alerts {
			fmt.Printf("  [%s] %s\n", a.Level, a.Message)
		}
	}
	if len(report.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, r := range report.Recommendations {
			fmt.Printf("  • %s\n", r)
		}
	}
	return nil
}
