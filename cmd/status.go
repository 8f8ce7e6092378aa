package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritmolabs/ritmo/internal/config"
	"github.com/ritmolabs/ritmo/internal/history"
	"github.com/ritmolabs/ritmo/internal/scheduler"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and service health",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	fmt.Printf("%s ritmo v%s\n\n", logo, version)

	cfgPath := config.ConfigPath()
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("✓ Config: %s\n", cfgPath)
	} else {
		fmt.Printf("✗ Config: %s (run 'ritmo onboard')\n", cfgPath)
	}

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	fmt.Printf("  Data dir: %s\n", config.DataDir())

	if store, err := history.Open(config.DataDir()); err == nil {
		var users int
		profiles, perr := store.Profiles(context.Background())
		if perr == nil {
			users = len(profiles)
		}
		fmt.Printf("✓ History store reachable (%d registered users)\n", users)
		store.Close()
	} else {
		fmt.Printf("✗ History store: %v\n", err)
	}

	if cfg.LLM.APIKey != "" {
		fmt.Printf("✓ LLM: %s\n", cfg.LLM.Model)
	} else {
		fmt.Println("✗ LLM: no API key (replies use the canned bank)")
	}

	mark := func(enabled bool) string {
		if enabled {
			return "✓"
		}
		return "✗"
	}
	fmt.Printf("%s Channel telegram\n", mark(cfg.Telegram.Enabled))
	fmt.Printf("%s Channel websignals (%s)\n", mark(cfg.WebSignals.Enabled), cfg.WebSignals.Addr)
	fmt.Printf("%s Slack escalation (%s)\n", mark(cfg.Slack.Enabled), cfg.Slack.Channel)

	jobs := scheduler.NewService(config.SchedulePath()).Jobs(true)
	fmt.Printf("  Scheduled jobs: %d\n", len(jobs))
	return nil
}
