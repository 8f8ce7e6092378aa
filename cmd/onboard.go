package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritmolabs/ritmo/internal/config"
	"github.com/ritmolabs/ritmo/internal/history"
	"github.com/ritmolabs/ritmo/internal/schema"
)

var (
	onboardUserID   string
	onboardName     string
	onboardStage    string
	onboardComms    string
	onboardTimezone string
	onboardChannel  string
	onboardChatID   string
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration, or register a user profile",
	RunE:  runOnboard,
}

func init() {
	onboardCmd.Flags().StringVar(&onboardUserID, "user", "", "Register a profile for this user ID")
	onboardCmd.Flags().StringVar(&onboardName, "name", "", "User's name")
	onboardCmd.Flags().StringVar(&onboardStage, "stage", "active_adult",
		"Life stage: older_adult, active_adult, young, migrant, low_vision")
	onboardCmd.Flags().StringVar(&onboardComms, "comms", "text", "Preferred mode: text, audio, mixed")
	onboardCmd.Flags().StringVar(&onboardTimezone, "tz", "Europe/Madrid", "IANA timezone")
	onboardCmd.Flags().StringVar(&onboardChannel, "channel", "", "Delivery channel for proactive prompts")
	onboardCmd.Flags().StringVar(&onboardChatID, "chat", "", "Delivery chat ID")
}

func runOnboard(_ *cobra.Command, _ []string) error {
	if onboardUserID != "" {
		return registerProfile()
	}

	cfgPath := config.ConfigPath()
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	if err := os.MkdirAll(config.DataDir(), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	fmt.Printf("\n%s ritmo is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your channel tokens and LLM API key to %s\n", cfgPath)
	fmt.Printf("  2. Register a user: ritmo onboard --user maria --name María --stage older_adult\n")
	fmt.Printf("  3. Start the service: ritmo gateway\n")
	return nil
}

func registerProfile() error {
	switch schema.LifeStage(onboardStage) {
	case schema.StageOlderAdult, schema.StageActiveAdult, schema.StageYoung,
		schema.StageMigrant, schema.StageLowVision:
	default:
		return fmt.Errorf("unknown life stage %q", onboardStage)
	}
	switch schema.CommsMode(onboardComms) {
	case schema.CommsText, schema.CommsAudio, schema.CommsMixed:
	default:
		return fmt.Errorf("unknown comms mode %q", onboardComms)
	}

	store, err := history.Open(config.DataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	profile := schema.Profile{
		UserID:   onboardUserID,
		Name:     onboardName,
		Stage:    schema.LifeStage(onboardStage),
		Comms:    schema.CommsMode(onboardComms),
		Timezone: onboardTimezone,
	}
	if err := store.SaveProfile(context.Background(), profile, onboardChannel, onboardChatID); err != nil {
		return err
	}
	fmt.Printf("✓ Registered profile %s (%s)\n", onboardUserID, onboardStage)
	return nil
}
