package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answerer.go -package=mocks kahani-ai/internal/service Answerer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ask_service.go -package=mocks -mock_names=AskService=MockAskService kahani-ai/internal/service AskService

import (
	"context"
	"strings"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/rag"
)

// Answerer answers a question about the story corpus.
type Answerer interface {
	AnswerQuestion(ctx context.Context, question, storyID string) rag.Answer
}

// AskRequest represents a question about a story.
type AskRequest struct {
	Question string
	StoryID  string
}

// AskService defines the interface for question answering.
type AskService interface {
	Ask(ctx context.Context, req AskRequest) (rag.Answer, error)
}

type askService struct {
	answerer Answerer
}

// NewAskService creates a new AskService instance.
func NewAskService(answerer Answerer) AskService {
	return &askService{answerer: answerer}
}

// Ask validates the request and hands it to the answerer.
// Answering failures are reported in the returned Answer, not as an error;
// the error is reserved for invalid input.
func (s *askService) Ask(ctx context.Context, req AskRequest) (rag.Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		logger.WarnContext(ctx, "ask request validation failed", "field", "question", "reason", "empty")
		return rag.Answer{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}

	storyID := strings.TrimSpace(req.StoryID)
	logger.DebugContext(ctx, "answering question", "story_id", storyID, "question_length", len(question))

	answer := s.answerer.AnswerQuestion(ctx, question, storyID)
	if !answer.Success {
		logger.InfoContext(ctx, "question not answered", "story_id", storyID, "reason", answer.Reason)
	}
	return answer, nil
}
