package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritmolabs/ritmo/internal/config"
	"github.com/ritmolabs/ritmo/internal/history"
	"github.com/ritmolabs/ritmo/internal/schema"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <user-id> <good|normal|difficult>",
	Short: "Record a daily check-in for a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheckin,
}

func runCheckin(_ *cobra.Command, args []string) error {
	userID, state := args[0], schema.EmotionalState(args[1])
	switch state {
	case schema.StateGood, schema.StateNormal, schema.StateDifficult:
	default:
		return fmt.Errorf("unknown check-in state %q (want good, normal, or difficult)", args[1])
	}

	store, err := history.Open(config.DataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.AddCheckin(context.Background(), userID, state); err != nil {
		return err
	}
	fmt.Printf("✓ Check-in recorded for %s: %s\n", userID, state)
	return nil
}
