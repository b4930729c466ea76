package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kahani-ai/internal/service"
)

// ErrNotAnswered is returned by the ask command when no answer was produced.
var ErrNotAnswered = errors.New("question not answered")

func newAskCommand(load Loader) *cobra.Command {
	var (
		storyID string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about a story",
		Long: `Answers one question. With --story the answer is drawn from that story;
ids such as "root/zakhmi-parinda", "zakhmi-parinda" and "zakhmi_parinda" are equivalent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return withServices(cmd, load, func(ctx context.Context, s *Services) error {
				if s.Warm != nil {
					if err := s.Warm(ctx); err != nil {
						return fmt.Errorf("failed to build index: %w", err)
					}
				}

				answer, err := s.Ask.Ask(ctx, service.AskRequest{Question: question, StoryID: storyID})
				if err != nil {
					return err
				}

				if asJSON {
					if err := printJSON(cmd, answer); err != nil {
						return err
					}
				} else if answer.Success {
					if answer.StoryTitle != "" {
						cmd.Println(heading(answer.StoryTitle))
					}
					cmd.Println(answer.Response)
					cmd.Println(faint(fmt.Sprintf("(%s, %s)", answer.QuestionType, answer.Source)))
				} else {
					cmd.PrintErrln(failure("Error:"), answer.Error)
				}

				if !answer.Success {
					return fmt.Errorf("%w: %s", ErrNotAnswered, answer.Reason)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&storyID, "story", "s", "", "story id to ask about")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the answer as JSON")
	return cmd
}
