package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritmolabs/ritmo/internal/resources"
)

var resourcesTopic string

var resourcesCmd = &cobra.Command{
	Use:   "resources [name]",
	Short: "List support resources, or preview one by name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResources,
}

func init() {
	resourcesCmd.Flags().StringVarP(&resourcesTopic, "topic", "t", "", "Filter by topic (crisis, loneliness, caregiving, general)")
}

func runResources(_ *cobra.Command, args []string) error {
	library := resources.DefaultLibrary()
	if resourcesTopic != "" {
		library = resources.ForTopic(library, resourcesTopic)
	}

	if len(args) == 0 {
		if len(library) == 0 {
			fmt.Println("No resources for that topic.")
			return nil
		}
		for _, line := range resources.Lines(library) {
			fmt.Println("  " + line)
		}
		return nil
	}

	for _, r := range library {
		if r.Name != args[0] {
			continue
		}
		fmt.Printf("%s — tel. %s\n", r.Name, r.Phone)
		if r.URL == "" {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		excerpt, err := resources.NewFetcher().Excerpt(ctx, r.URL)
		if err != nil {
			return fmt.Errorf("preview %s: %w", r.URL, err)
		}
		fmt.Println("\n" + excerpt)
		return nil
	}
	return fmt.Errorf("unknown resource %q", args[0])
}
