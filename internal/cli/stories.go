package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kahani-ai/internal/service"
)

func newStoriesCommand(load Loader) *cobra.Command {
	var (
		filter service.StoryFilter
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stories",
		Short: "List the stories in the stories directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, s *Services) error {
				if s.Refresh != nil {
					if err := s.Refresh(ctx); err != nil {
						return fmt.Errorf("failed to scan stories: %w", err)
					}
				}

				listings, err := s.Stories.List(ctx, filter)
				if err != nil {
					return err
				}

				if asJSON {
					return printJSON(cmd, listings)
				}
				if len(listings) == 0 {
					cmd.Println("No stories found.")
					return nil
				}
				for _, l := range listings {
					cmd.Printf("%s  %s  %s\n", label(l.ID), l.Title, faint(fmt.Sprintf("[%s, %s]", l.Type, l.AgeGroup)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.AgeGroup, "age-group", "", "only stories for this age group, e.g. 5-7")
	cmd.Flags().StringVar(&filter.Type, "type", "", "only this type: story or poem")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the listing as JSON")
	return cmd
}
