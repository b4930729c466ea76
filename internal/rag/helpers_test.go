package rag

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"kahani-ai/internal/indexer"
	"kahani-ai/internal/storage"
	"kahani-ai/internal/story"
	"kahani-ai/internal/vectorstore"
)

const testVectorSize = 64

// hashEmbedder embeds by hashing words into buckets, so texts sharing words land close together.
type hashEmbedder struct{}

func (hashEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashVector(t)
	}
	return out, nil
}

func hashVector(text string) []float32 {
	vec := make([]float32, testVectorSize)
	for _, w := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%testVectorSize]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec
}

// tableEmbedder returns fixed vectors for known texts and hash vectors otherwise.
type tableEmbedder map[string][]float32

func (e tableEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e[t]; ok {
			out[i] = v
			continue
		}
		out[i] = hashVector(t)
	}
	return out, nil
}

// mapDocs is an in-memory DocumentStore.
type mapDocs map[string]story.Document

func (m mapDocs) Get(ctx context.Context, id string) (*story.Document, error) {
	for _, candidate := range story.CandidateIDs(id) {
		if doc, ok := m[candidate]; ok {
			return &doc, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m mapDocs) Documents(ctx context.Context) ([]story.Document, error) {
	docs := make([]story.Document, 0, len(m))
	for _, doc := range m {
		docs = append(docs, doc)
	}
	return docs, nil
}

func newTestIndex(t *testing.T, docs mapDocs) *indexer.Index {
	t.Helper()
	pipeline := indexer.NewPipeline(hashEmbedder{}, vectorstore.NewMemoryStore(), testVectorSize, "hash")
	ix := indexer.NewIndex(pipeline, docs, nil, "test")
	if _, err := ix.Rebuild(context.Background()); err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	return ix
}

// echoContext answers with the context line of the prompt.
func echoContext(ctx context.Context, prompt string) (string, error) {
	_, after, _ := strings.Cut(prompt, "<|context|>")
	line, _, _ := strings.Cut(after, "\n")
	return line, nil
}

func parindaStory() story.Document {
	return story.Document{
		ID:       "root/zakhmi-parinda",
		Title:    "زخمی پرندہ",
		Content:  "علی ایک اچھا بچہ تھا۔ ایک دن اس نے ایک زخمی پرندہ دیکھا۔",
		AgeGroup: "5-7",
		Type:     story.TypeStory,
		Characters: []story.Character{
			{Name: "علی"},
			{Name: "پرندہ"},
		},
	}
}

func kitaabStory() story.Document {
	return story.Document{
		ID:      "root/kitaab",
		Title:   "کتاب",
		Content: "میں نے ایک کتاب پڑھی۔ کتاب دلچسپ تھی۔",
	}
}
