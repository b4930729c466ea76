package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newReindexCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the vector index from the stories directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, s *Services) error {
				stats, err := s.Index.Rebuild(ctx)
				if err != nil {
					return err
				}
				cmd.Println(heading("Index rebuilt"))
				cmd.Printf("%s %s\n", label("collection:"), stats.Collection)
				cmd.Printf("%s %d (%d without text)\n", label("stories:"), stats.DocsProcessed, stats.DocsWith0Chunks)
				cmd.Printf("%s %d\n", label("sentences:"), stats.ChunksEmbedded)
				cmd.Printf("%s %s\n", label("duration:"), stats.Duration)
				return nil
			})
		},
	}
}
