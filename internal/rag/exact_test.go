package rag

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"kahani-ai/internal/indexer"
	"kahani-ai/internal/rag/mocks"
)

func TestExactMatcher_Find(t *testing.T) {
	docs := mapDocs{"root/kitaab": kitaabStory()}

	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{name: "sentence prefix", candidate: "کتاب دلچسپ", want: "کتاب دلچسپ تھی۔"},
		{name: "whole first sentence", candidate: "میں نے", want: "میں نے ایک کتاب پڑھی۔"},
		{name: "mid sentence returns suffix", candidate: "دلچسپ", want: "دلچسپ تھی۔"},
		{name: "first match in document order", candidate: "کتاب", want: "کتاب پڑھی۔"},
		{name: "surrounding space ignored", candidate: "  کتاب دلچسپ ", want: "کتاب دلچسپ تھی۔"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// The index is only consulted when the story text has no match
			searcher := mocks.NewMockSearcher(ctrl)

			got, err := NewExactMatcher(docs, searcher).Find(context.Background(), tt.candidate, "kitaab")
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Find() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExactMatcher_Find_IndexFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().
		Search(gomock.Any(), "پرندہ اڑ", 3, "root/kitaab").
		Return([]indexer.Hit{
			{Chunk: indexer.Chunk{Text: "عنوان: کتاب"}},
			{Chunk: indexer.Chunk{Text: "پھر پرندہ اڑ گیا۔"}},
		}, nil)

	got, err := NewExactMatcher(mapDocs{"root/kitaab": kitaabStory()}, searcher).Find(context.Background(), "پرندہ اڑ", "kitaab")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got != "پرندہ اڑ گیا۔" {
		t.Errorf("Find() = %q, want index continuation", got)
	}
}

func TestExactMatcher_Find_NoMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), "علی نے کیا دیکھا؟", 3, "root/missing").Return(nil, nil)

	// Unknown stories are still looked up in the index under the given id
	_, err := NewExactMatcher(mapDocs{}, searcher).Find(context.Background(), "علی نے کیا دیکھا؟", "root/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Find() error = %v, want ErrNotFound", err)
	}
}

func TestExactMatcher_Find_EmptyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewExactMatcher(mapDocs{"root/kitaab": kitaabStory()}, mocks.NewMockSearcher(ctrl))

	if _, err := m.Find(context.Background(), "   ", "root/kitaab"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find() with empty candidate error = %v, want ErrNotFound", err)
	}
	if _, err := m.Find(context.Background(), "کتاب", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find() without story error = %v, want ErrNotFound", err)
	}
}

func TestExactMatcher_Find_SearchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("index down"))

	_, err := NewExactMatcher(mapDocs{"root/kitaab": kitaabStory()}, searcher).Find(context.Background(), "غائب", "root/kitaab")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Find() error = %v, want search failure", err)
	}
}
