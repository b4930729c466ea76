package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/indexer"
	"kahani-ai/internal/llm"
)

// Context token budgets, largest first.
const (
	ContextBudget        = 100
	ReducedContextBudget = 50
	MinimalContextBudget = 25

	// maxPromptTokens leaves room for the answer in the model's window.
	maxPromptTokens = 400
)

const promptTemplate = `<|system|>Answer based ONLY on this context. If unsure, say: "کہانی میں ذکر نہیں۔"
<|user|>%s
<|context|>%s
<|assistant|>`

// BuildPrompt renders the instruction prompt for question and context.
func BuildPrompt(question, passage string) string {
	return fmt.Sprintf(promptTemplate, question, passage)
}

// CountTokens approximates a token count as words plus ASCII punctuation marks.
func CountTokens(text string) int {
	n := len(strings.Fields(text))
	for _, r := range text {
		switch r {
		case '.', ',', '!', '?', ';', ':':
			n++
		}
	}
	return n
}

// TruncateContext keeps the longest prefix of whole sentences that fits in
// maxTokens. A first sentence that alone exceeds the budget is cut at a word boundary.
func TruncateContext(passage string, maxTokens int) string {
	if CountTokens(passage) <= maxTokens {
		return passage
	}

	var kept []string
	for _, s := range indexer.SplitSentences(passage) {
		next := append(kept, s)
		if CountTokens(strings.Join(next, " ")) > maxTokens {
			break
		}
		kept = next
	}
	if len(kept) > 0 {
		return strings.Join(kept, " ")
	}

	var words []string
	for _, w := range strings.Fields(passage) {
		next := append(words, w)
		if CountTokens(strings.Join(next, " ")) > maxTokens {
			break
		}
		words = next
	}
	return strings.Join(words, " ")
}

// Generated is a validated model answer and the context it was produced from.
type Generated struct {
	Response string
	Context  string
}

// AnswerGenerator prompts the model with retrieved context and validates its output.
type AnswerGenerator struct {
	model     Generator
	validator *Validator
}

// NewAnswerGenerator creates an AnswerGenerator.
func NewAnswerGenerator(model Generator, validator *Validator) *AnswerGenerator {
	return &AnswerGenerator{model: model, validator: validator}
}

// Generate answers question from passage. The passage is truncated to
// ContextBudget tokens, or ReducedContextBudget when the prompt would be too
// long. If the model rejects the prompt as too long, one more attempt is made
// with MinimalContextBudget. Output that fails validation yields ErrInvalidResponse.
func (g *AnswerGenerator) Generate(ctx context.Context, question, passage string) (Generated, error) {
	logger := contextutil.LoggerFromContext(ctx)

	budget := ContextBudget
	used := TruncateContext(passage, budget)
	if CountTokens(BuildPrompt(question, used)) > maxPromptTokens {
		budget = ReducedContextBudget
		used = TruncateContext(passage, budget)
	}

	raw, err := g.model.Generate(ctx, BuildPrompt(question, used))
	if errors.Is(err, llm.ErrTokenLimitExceeded) {
		logger.WarnContext(ctx, "prompt exceeded token limit, retrying with minimal context", "budget", budget)
		budget = MinimalContextBudget
		used = TruncateContext(passage, budget)
		raw, err = g.model.Generate(ctx, BuildPrompt(question, used))
	}
	if err != nil {
		return Generated{}, fmt.Errorf("failed to generate answer with budget %d: %w", budget, err)
	}

	response := FormatResponse(raw)
	valid, err := g.validator.IsValid(ctx, response, used)
	if err != nil {
		return Generated{}, fmt.Errorf("failed to validate answer: %w", err)
	}
	if !valid {
		logger.InfoContext(ctx, "generated answer rejected", "response_length", len(response), "budget", budget)
		return Generated{}, ErrInvalidResponse
	}

	return Generated{Response: response, Context: used}, nil
}
