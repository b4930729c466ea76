package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"kahani-ai/internal/indexer"
	"kahani-ai/internal/rag/mocks"
	"kahani-ai/internal/story"
)

func newTestEngine(t *testing.T, docs mapDocs, model Generator, opts Options) *Engine {
	t.Helper()
	return NewEngine(docs, newTestIndex(t, docs), hashEmbedder{}, model, opts)
}

func TestEngine_BenchmarkTitleSkipsRetrieval(t *testing.T) {
	ctrl := gomock.NewController(t)
	// Neither search nor generation may run
	searcher := mocks.NewMockSearcher(ctrl)
	model := mocks.NewMockGenerator(ctrl)

	docs := mapDocs{"root/x": {ID: "root/x", Title: "X", Content: "کچھ متن۔"}}
	e := NewEngine(docs, searcher, hashEmbedder{}, model, Options{})

	got := e.AnswerQuestion(context.Background(), "کہانی کا عنوان کیا ہے؟", "x")
	assert.True(t, got.Success)
	assert.Equal(t, "X", got.Response)
	assert.Equal(t, "X", got.Context)
	assert.Equal(t, "X", got.StoryTitle)
	assert.Equal(t, SourceExactQuestion, got.Source)
	assert.Equal(t, CategoryTitle, got.QuestionType)
}

func TestEngine_EmptyFieldFallsThroughToRetrieval(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockGenerator(ctrl)
	model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(echoContext).Times(1)

	docs := mapDocs{"root/zakhmi-parinda": parindaStory()}
	e := newTestEngine(t, docs, model, Options{})

	// The story has no lesson
	got := e.AnswerQuestion(context.Background(), "کہانی کا سبق کیا ہے؟", "root/zakhmi-parinda")
	require.True(t, got.Success, "answer: %+v", got)
	assert.Equal(t, SourceGeneration, got.Source)
	assert.NotEmpty(t, got.Response)
}

func TestEngine_SentenceCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockGenerator(ctrl)

	docs := mapDocs{"root/kitaab": kitaabStory()}
	e := newTestEngine(t, docs, model, Options{})

	got := e.AnswerQuestion(context.Background(), "کتاب دلچسپ", "root/kitaab")
	assert.True(t, got.Success)
	assert.Equal(t, "کتاب دلچسپ تھی۔", got.Response)
	assert.Equal(t, got.Response, got.Context)
	assert.Equal(t, SourceSentenceCompletion, got.Source)
	assert.Equal(t, "کتاب", got.StoryTitle)
}

func TestEngine_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockGenerator(ctrl)
	model.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "<|context|>")
			assert.Contains(t, prompt, "زخمی پرندہ")
			return "علی نے ایک زخمی پرندہ دیکھا۔", nil
		})

	docs := mapDocs{"root/zakhmi-parinda": parindaStory()}
	e := newTestEngine(t, docs, model, Options{})

	got := e.AnswerQuestion(context.Background(), "علی نے کیا دیکھا؟", "zakhmi_parinda")
	require.True(t, got.Success, "answer: %+v", got)
	assert.Contains(t, got.Context, "زخمی پرندہ")
	assert.Contains(t, got.Response, "زخمی پرندہ")
	assert.Equal(t, SourceGeneration, got.Source)
	assert.Equal(t, CategoryContent, got.QuestionType)
	assert.Equal(t, "زخمی پرندہ", got.StoryTitle)
}

func TestEngine_NoContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockGenerator(ctrl)

	e := newTestEngine(t, mapDocs{}, model, Options{})

	got := e.AnswerQuestion(context.Background(), "علی نے کیا دیکھا؟", "")
	assert.False(t, got.Success)
	assert.Equal(t, ReasonNoContext, got.Reason)
	assert.Equal(t, "No relevant context found", got.Error)
	assert.Empty(t, got.Response)
}

func TestEngine_UnknownStory(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockGenerator(ctrl)

	e := newTestEngine(t, mapDocs{"root/zakhmi-parinda": parindaStory()}, model, Options{})

	got := e.AnswerQuestion(context.Background(), "کہانی کا عنوان کیا ہے؟", "root/missing")
	assert.False(t, got.Success)
	assert.Equal(t, ReasonNoContext, got.Reason)
}

func TestEngine_InvalidResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockGenerator(ctrl)
	model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("ہاں", nil).Times(1)

	docs := mapDocs{"root/zakhmi-parinda": parindaStory()}
	e := newTestEngine(t, docs, model, Options{})

	got := e.AnswerQuestion(context.Background(), "علی نے کیا دیکھا؟", "root/zakhmi-parinda")
	assert.False(t, got.Success)
	assert.Equal(t, ReasonInvalidResponse, got.Reason)
	assert.Empty(t, got.Response)
}

func TestEngine_PanicBecomesApology(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockGenerator(ctrl)
	model.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, prompt string) (string, error) {
			panic("model crashed")
		})

	docs := mapDocs{"root/zakhmi-parinda": parindaStory()}
	e := newTestEngine(t, docs, model, Options{})

	got := e.AnswerQuestion(context.Background(), "علی نے کیا دیکھا؟", "root/zakhmi-parinda")
	assert.False(t, got.Success)
	assert.Equal(t, Apology, got.Error)
	assert.Equal(t, ReasonUnexpected, got.Reason)
}

func TestEngine_DirectAnswerByKeyword(t *testing.T) {
	question := "اس کہانی کے کردار بتاؤ"
	docs := mapDocs{"root/zakhmi-parinda": parindaStory()}

	t.Run("enabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		e := newTestEngine(t, docs, mocks.NewMockGenerator(ctrl), Options{DirectAnswerByKeyword: true})

		got := e.AnswerQuestion(context.Background(), question, "root/zakhmi-parinda")
		assert.True(t, got.Success)
		assert.Equal(t, "علی، پرندہ", got.Response)
		assert.Equal(t, SourceKeyword, got.Source)
		assert.Equal(t, CategoryCharacters, got.QuestionType)
	})

	t.Run("disabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		model := mocks.NewMockGenerator(ctrl)
		model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(echoContext)
		e := newTestEngine(t, docs, model, Options{})

		got := e.AnswerQuestion(context.Background(), question, "root/zakhmi-parinda")
		assert.Equal(t, SourceGeneration, got.Source)
	})
}

func TestEngine_DifficultWordsBenchmark(t *testing.T) {
	ctrl := gomock.NewController(t)
	doc := parindaStory()
	doc.DifficultWords = []story.DifficultWord{{Word: "زخمی", Meaning: "چوٹ کھایا ہوا"}}
	docs := mapDocs{doc.ID: doc}

	e := NewEngine(docs, mocks.NewMockSearcher(ctrl), hashEmbedder{}, mocks.NewMockGenerator(ctrl), Options{})
	got := e.AnswerQuestion(context.Background(), "کہانی کے مشکل الفاظ کون سے ہیں؟", doc.ID)

	assert.True(t, got.Success)
	assert.Equal(t, "زخمی - چوٹ کھایا ہوا", got.Response)
	// The benchmark table wins over the "مشکل" keyword
	assert.Equal(t, CategoryDifficultWords, got.QuestionType)
}

// countingSearcher records the k of every search it forwards.
type countingSearcher struct {
	Searcher
	ks []int
}

func (s *countingSearcher) Search(ctx context.Context, query string, k int, storyID string) ([]indexer.Hit, error) {
	s.ks = append(s.ks, k)
	return s.Searcher.Search(ctx, query, k, storyID)
}

func TestEngine_GenerationLooksUpExactMatchOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockGenerator(ctrl)
	model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(echoContext).Times(1)

	docs := mapDocs{"root/zakhmi-parinda": parindaStory()}
	searcher := &countingSearcher{Searcher: newTestIndex(t, docs)}
	e := NewEngine(docs, searcher, hashEmbedder{}, model, Options{})

	got := e.AnswerQuestion(context.Background(), "کہانی کا سبق کیا ہے؟", "root/zakhmi-parinda")
	require.True(t, got.Success, "answer: %+v", got)
	assert.Equal(t, SourceGeneration, got.Source)

	// One index lookup for the exact match, one for the filtered search
	require.GreaterOrEqual(t, len(searcher.ks), 2)
	assert.Equal(t, []int{exactLookupK, filteredK}, searcher.ks[:2])
	for _, k := range searcher.ks[2:] {
		assert.Equal(t, broadK, k)
	}
}
