package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/indexer"
)

// Retrieval parameters.
const (
	filteredK       = 3
	broadK          = 2
	maxRescored     = 2
	overlapWeight   = 0.7
	semanticWeight  = 0.3
	minRescoreScore = 0.3

	// DefaultContextOverlapThreshold is the similarity above which a sentence
	// counts as a near duplicate of one already in the context.
	DefaultContextOverlapThreshold = 0.2
)

// Retriever assembles the story context used to answer a question.
type Retriever struct {
	matcher          *ExactMatcher
	searcher         Searcher
	embedder         Embedder
	overlapThreshold float64
}

// NewRetriever creates a Retriever. A non-positive overlapThreshold selects the default.
func NewRetriever(matcher *ExactMatcher, searcher Searcher, embedder Embedder, overlapThreshold float64) *Retriever {
	if overlapThreshold <= 0 {
		overlapThreshold = DefaultContextOverlapThreshold
	}
	return &Retriever{
		matcher:          matcher,
		searcher:         searcher,
		embedder:         embedder,
		overlapThreshold: overlapThreshold,
	}
}

type scoredSentence struct {
	text  string
	score float64
}

// GetContext returns the context for question, trying in order an exact
// sentence match, a story-restricted search re-scored per sentence, and a
// broader search with near-duplicate suppression. It returns "" when nothing qualifies.
func (r *Retriever) GetContext(ctx context.Context, question, storyID string) (string, error) {
	if storyID != "" {
		doc, err := resolveStory(ctx, r.matcher.docs, storyID)
		if err != nil {
			return "", err
		}
		if doc != nil {
			storyID = doc.ID
		}

		match, err := r.matcher.Find(ctx, question, storyID)
		if err == nil {
			contextutil.LoggerFromContext(ctx).DebugContext(ctx, "context from exact match")
			return match, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return r.searchContext(ctx, question, storyID)
}

// searchContext runs the two search stages of GetContext. storyID must
// already be resolved and have had its exact match tried.
func (r *Retriever) searchContext(ctx context.Context, question, storyID string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if storyID != "" {
		best, err := r.rescored(ctx, question, storyID)
		if err != nil {
			return "", err
		}
		if len(best) > 0 {
			logger.DebugContext(ctx, "context from filtered search", "sentences", len(best))
			return strings.Join(best, " "), nil
		}
	}

	combined, err := r.broad(ctx, question, storyID)
	if err != nil {
		return "", err
	}
	logger.DebugContext(ctx, "context from broad search", "sentences", len(combined))
	return strings.Join(combined, " "), nil
}

// rescored scores every sentence of the top story hits by word overlap and
// semantic similarity with the question and keeps the best two above the floor.
func (r *Retriever) rescored(ctx context.Context, question, storyID string) ([]string, error) {
	hits, err := r.searcher.Search(ctx, question, filteredK, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to search story: %w", err)
	}
	sentences := hitSentences(hits)
	if len(sentences) == 0 {
		return nil, nil
	}

	vectors, err := embedAll(ctx, r.embedder, append([]string{question}, sentences...))
	if err != nil {
		return nil, err
	}
	questionVec, sentenceVecs := vectors[0], vectors[1:]
	questionWords := wordSet(question)

	scored := make([]scoredSentence, len(sentences))
	for i, s := range sentences {
		overlap := wordOverlap(questionWords, wordSet(s))
		scored[i] = scoredSentence{
			text:  s,
			score: float64(overlap)*overlapWeight + cosine(sentenceVecs[i], questionVec)*semanticWeight,
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	var best []string
	for _, s := range scored[:min(maxRescored, len(scored))] {
		if s.score > minRescoreScore {
			best = append(best, s.text)
		}
	}
	return best, nil
}

// broad accepts hit sentences in rank order, skipping any too similar to one already accepted.
func (r *Retriever) broad(ctx context.Context, question, storyID string) ([]string, error) {
	hits, err := r.searcher.Search(ctx, question, broadK, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	sentences := hitSentences(hits)
	if len(sentences) == 0 {
		return nil, nil
	}

	vectors, err := embedAll(ctx, r.embedder, sentences)
	if err != nil {
		return nil, err
	}

	var accepted []int
	for i := range sentences {
		duplicate := false
		for _, j := range accepted {
			if cosine(vectors[i], vectors[j]) > r.overlapThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			accepted = append(accepted, i)
		}
	}

	combined := make([]string, len(accepted))
	for n, i := range accepted {
		combined[n] = sentences[i]
	}
	return combined, nil
}

func hitSentences(hits []indexer.Hit) []string {
	var sentences []string
	for _, hit := range hits {
		sentences = append(sentences, indexer.SplitSentences(hit.Chunk.Text)...)
	}
	return sentences
}
