package rag

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Validation defaults.
const (
	DefaultMinResponseLength   = 10
	DefaultSimilarityThreshold = 0.5
	minOverlapWords            = 3
)

// Validator decides whether a generated response is grounded in its context.
type Validator struct {
	embedder  Embedder
	minLength int
	threshold float64
}

// NewValidator creates a Validator. Non-positive values select the defaults.
func NewValidator(embedder Embedder, minLength int, threshold float64) *Validator {
	if minLength <= 0 {
		minLength = DefaultMinResponseLength
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Validator{embedder: embedder, minLength: minLength, threshold: threshold}
}

// IsValid rejects responses shorter than the minimum length. It accepts a
// response quoted from the context or sharing more than three words with it,
// and otherwise requires cosine similarity of at least the threshold.
func (v *Validator) IsValid(ctx context.Context, response, passage string) (bool, error) {
	response = strings.TrimSpace(response)
	if utf8.RuneCountInString(response) < v.minLength {
		return false, nil
	}
	if strings.Contains(passage, response) {
		return true, nil
	}
	if wordOverlap(wordSet(response), wordSet(passage)) > minOverlapWords {
		return true, nil
	}

	vectors, err := embedAll(ctx, v.embedder, []string{response, passage})
	if err != nil {
		return false, err
	}
	return cosine(vectors[0], vectors[1]) >= v.threshold, nil
}
