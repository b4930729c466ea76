package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kahani-ai/internal/indexer"
)

func newChunksCommand(load Loader) *cobra.Command {
	var (
		words  int
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "chunks [story-id]",
		Short: "Show how a story is split for retrieval",
		Long: `Prints the story content grouped into chunks of whole sentences.
With --strict it prints the one-sentence chunks the index stores, title line included.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, s *Services) error {
				if s.Refresh != nil {
					if err := s.Refresh(ctx); err != nil {
						return fmt.Errorf("failed to scan stories: %w", err)
					}
				}

				doc, err := s.Stories.Get(ctx, args[0])
				if err != nil {
					return err
				}

				var chunks []string
				if strict {
					for _, c := range indexer.DocumentChunks(doc) {
						chunks = append(chunks, c.Text)
					}
				} else {
					budget := words
					if budget <= 0 {
						budget = s.ChunkWords
					}
					chunks = indexer.ChunkText(doc.Content, budget)
				}

				cmd.Println(heading(doc.Title))
				for i, c := range chunks {
					cmd.Printf("%s %s\n", label(fmt.Sprintf("[%d]", i+1)), c)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&words, "words", "w", 0, "word budget per chunk (default CHUNK_SIZE)")
	cmd.Flags().BoolVar(&strict, "strict", false, "one sentence per chunk, as indexed")
	return cmd
}
