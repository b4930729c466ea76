package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kahani-ai/internal/indexer"
	"kahani-ai/internal/storage"
	"kahani-ai/internal/story"
)

// exactLookupK is how many indexed sentences the fallback lookup scans.
const exactLookupK = 3

// ExactMatcher resolves partial sentences to their literal continuation in a story.
type ExactMatcher struct {
	docs     DocumentStore
	searcher Searcher
}

// NewExactMatcher creates an ExactMatcher. searcher may be nil to disable the index lookup.
func NewExactMatcher(docs DocumentStore, searcher Searcher) *ExactMatcher {
	return &ExactMatcher{docs: docs, searcher: searcher}
}

// Find scans the story's sentences in order for candidate. A sentence that
// starts with candidate is returned whole; a sentence that contains it is
// returned from the match onwards. When the story text has no match, the
// closest indexed sentences of the story are scanned the same way.
// Returns ErrNotFound when nothing matches.
func (m *ExactMatcher) Find(ctx context.Context, candidate, storyID string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || storyID == "" {
		return "", ErrNotFound
	}

	doc, err := resolveStory(ctx, m.docs, storyID)
	if err != nil {
		return "", err
	}
	if doc != nil {
		if match, ok := matchSentences(indexer.SplitSentences(doc.Content), candidate); ok {
			return match, nil
		}
		storyID = doc.ID
	}

	if m.searcher == nil {
		return "", ErrNotFound
	}

	hits, err := m.searcher.Search(ctx, candidate, exactLookupK, storyID)
	if err != nil {
		return "", fmt.Errorf("failed to search index: %w", err)
	}
	for _, hit := range hits {
		if match, ok := matchSentences(indexer.SplitSentences(hit.Chunk.Text), candidate); ok {
			return match, nil
		}
	}
	return "", ErrNotFound
}

// resolveStory looks storyID up. An unknown story yields a nil document and no error.
func resolveStory(ctx context.Context, docs DocumentStore, storyID string) (*story.Document, error) {
	doc, err := docs.Get(ctx, storyID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	return doc, nil
}

func matchSentences(sentences []string, candidate string) (string, bool) {
	for _, s := range sentences {
		if strings.HasPrefix(s, candidate) {
			return s, true
		}
		if i := strings.Index(s, candidate); i >= 0 {
			return s[i:], true
		}
	}
	return "", false
}
