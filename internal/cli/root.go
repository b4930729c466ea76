// Package cli implements the kahani command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kahani-ai/internal/service"
)

// Services are what the commands drive.
type Services struct {
	Ask     service.AskService
	Stories service.StoryService
	Index   service.IndexService
	// Refresh rescans the stories directory into the catalogue without embedding.
	Refresh func(ctx context.Context) error
	// Warm builds the index if no generation is published yet.
	Warm func(ctx context.Context) error
	// ChunkWords is the default word budget of the chunks command.
	ChunkWords int
}

// Loader opens the services. The returned function releases them.
type Loader func(ctx context.Context) (*Services, func() error, error)

var (
	heading = color.New(color.FgGreen, color.Bold).SprintFunc()
	label   = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
)

// NewRootCommand builds the kahani command tree.
func NewRootCommand(load Loader) *cobra.Command {
	root := &cobra.Command{
		Use:   "kahani",
		Short: "Ask questions about Urdu children's stories",
		Long: `kahani answers questions about a directory of Urdu stories and poems.
Benchmark questions are answered from story metadata; other questions are
answered from retrieved story text by a local language model.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newAskCommand(load),
		newStoriesCommand(load),
		newReindexCommand(load),
		newChunksCommand(load),
	)
	return root
}

// withServices opens the services for the duration of fn.
func withServices(cmd *cobra.Command, load Loader, fn func(ctx context.Context, s *Services) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, closeFn, err := load(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if s == nil {
		return errors.New("services not configured")
	}
	defer func() {
		if closeFn != nil {
			err = errors.Join(err, closeFn())
		}
	}()
	return fn(ctx, s)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
