package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_rag.go -package=mocks kahani-ai/internal/rag Generator,Embedder,Searcher

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/indexer"
	"kahani-ai/internal/story"
)

// Generator completes a raw prompt.
// Prompts that do not fit the model must fail with an error wrapping llm.ErrTokenLimitExceeded.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder maps texts to vectors of one fixed size.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher finds the indexed sentences closest to a query, optionally within one story.
type Searcher interface {
	Search(ctx context.Context, query string, k int, storyID string) ([]indexer.Hit, error)
}

// DocumentStore looks stories up by id. Unknown ids fail with storage.ErrNotFound.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*story.Document, error)
}

// Options tunes answering. Zero values select the defaults.
type Options struct {
	SimilarityThreshold     float64
	ContextOverlapThreshold float64
	MinResponseLength       int
	// DirectAnswerByKeyword answers keyword-classified questions from story
	// metadata, not only the benchmark phrasings.
	DirectAnswerByKeyword bool
}

// Engine answers questions about stories.
type Engine struct {
	docs      DocumentStore
	matcher   *ExactMatcher
	retriever *Retriever
	generator *AnswerGenerator
	byKeyword bool
}

// NewEngine wires the answering pipeline.
func NewEngine(docs DocumentStore, searcher Searcher, embedder Embedder, model Generator, opts Options) *Engine {
	matcher := NewExactMatcher(docs, searcher)
	return &Engine{
		docs:      docs,
		matcher:   matcher,
		retriever: NewRetriever(matcher, searcher, embedder, opts.ContextOverlapThreshold),
		generator: NewAnswerGenerator(model, NewValidator(embedder, opts.MinResponseLength, opts.SimilarityThreshold)),
		byKeyword: opts.DirectAnswerByKeyword,
	}
}

// AnswerQuestion answers question, optionally about the story storyID.
// It never panics or returns an error; failures are reported in the Answer.
func (e *Engine) AnswerQuestion(ctx context.Context, question, storyID string) (answer Answer) {
	logger := contextutil.LoggerFromContext(ctx).With("story_id", storyID)
	ctx = contextutil.WithLogger(ctx, logger)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "panic while answering question", "panic", r, "stack", string(debug.Stack()))
			answer = failure(fmt.Errorf("panic: %v", r))
		}
	}()

	category := Classify(question)
	if exactCat, ok := IsExactQuestion(question); ok {
		category = exactCat
	}
	logger.InfoContext(ctx, "answering question", "question_type", category)

	answer, err := e.answer(ctx, question, storyID, category)
	if err != nil {
		logger.WarnContext(ctx, "question not answered", "error", err, "reason", reasonFor(err))
		answer = failure(err)
	}
	answer.QuestionType = category
	return answer
}

func (e *Engine) answer(ctx context.Context, question, storyID string, category Category) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var doc *story.Document
	if storyID != "" {
		d, err := resolveStory(ctx, e.docs, storyID)
		if err != nil {
			return Answer{}, err
		}
		if d == nil {
			logger.DebugContext(ctx, "story not in catalogue")
		} else {
			doc = d
			storyID = d.ID
		}
	}

	title := ""
	if doc != nil {
		title = doc.Title

		if exactCat, ok := IsExactQuestion(question); ok {
			if a, ok := direct(*doc, exactCat, SourceExactQuestion); ok {
				return a, nil
			}
		}
		if e.byKeyword && category != CategoryContent {
			if a, ok := direct(*doc, category, SourceKeyword); ok {
				return a, nil
			}
		}
	}

	if storyID != "" {
		match, err := e.matcher.Find(ctx, question, storyID)
		if err == nil {
			return Answer{
				Success:    true,
				Response:   match,
				Context:    match,
				StoryTitle: title,
				Source:     SourceSentenceCompletion,
			}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Answer{}, err
		}
	}

	// The exact match for storyID was tried above
	passage, err := e.retriever.searchContext(ctx, question, storyID)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to retrieve context: %w", err)
	}
	if passage == "" {
		return Answer{}, ErrNoContext
	}

	generated, err := e.generator.Generate(ctx, question, passage)
	if err != nil {
		return Answer{}, err
	}

	logger.InfoContext(ctx, "question answered", "source", SourceGeneration, "response_length", len(generated.Response))
	return Answer{
		Success:    true,
		Response:   generated.Response,
		Context:    generated.Context,
		StoryTitle: title,
		Source:     SourceGeneration,
	}, nil
}

func direct(doc story.Document, category Category, source string) (Answer, bool) {
	value, err := DirectAnswer(doc, category)
	if err != nil {
		return Answer{}, false
	}
	return Answer{
		Success:    true,
		Response:   value,
		Context:    value,
		StoryTitle: doc.Title,
		Source:     source,
	}, true
}

// failure builds the Answer reported for err.
func failure(err error) Answer {
	reason := reasonFor(err)
	msg := err.Error()
	switch reason {
	case ReasonNoContext:
		msg = "No relevant context found"
	case ReasonInvalidResponse:
		msg = "Generated response was not relevant to the context"
	case ReasonTokenBudgetExceeded:
		msg = "Could not generate a valid response due to token limits"
	case ReasonNotFound:
		msg = "Story not found"
	case ReasonUnexpected:
		msg = Apology
	}
	return Answer{Success: false, Error: msg, Reason: reason}
}
