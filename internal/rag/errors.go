package rag

import (
	"errors"

	"kahani-ai/internal/llm"
)

var (
	// ErrNotFound means the story or the requested field does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoContext means retrieval produced nothing to answer from.
	ErrNoContext = errors.New("no relevant context found")
	// ErrInvalidResponse means the generated answer failed validation.
	ErrInvalidResponse = errors.New("generated response was not relevant to the context")
	// ErrTokenBudgetExceeded means the prompt did not fit even after truncation.
	ErrTokenBudgetExceeded = llm.ErrTokenLimitExceeded
)

// Failure reasons reported in Answer.Reason.
const (
	ReasonNotFound            = "not_found"
	ReasonNoContext           = "no_context"
	ReasonInvalidResponse     = "invalid_response"
	ReasonTokenBudgetExceeded = "token_budget_exceeded"
	ReasonUnexpected          = "unexpected"
)

// Apology is returned to the user when answering fails unexpectedly.
const Apology = "معذرت، میں اس وقت سوالات کا جواب نہیں دے سکتا۔"

// reasonFor maps an error to its failure reason.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrNoContext):
		return ReasonNoContext
	case errors.Is(err, ErrInvalidResponse):
		return ReasonInvalidResponse
	case errors.Is(err, ErrTokenBudgetExceeded):
		return ReasonTokenBudgetExceeded
	default:
		return ReasonUnexpected
	}
}
