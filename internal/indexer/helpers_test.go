package indexer

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"kahani-ai/internal/story"
)

const testVectorSize = 64

// hashEmbedder embeds by hashing words into buckets, so texts sharing words land close together.
type hashEmbedder struct {
	calls atomic.Int32
	size  int
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{size: testVectorSize}
}

func (e *hashEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.size)
		for _, w := range strings.Fields(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			vec[h.Sum32()%uint32(e.size)]++
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		if norm > 0 {
			n := float32(math.Sqrt(norm))
			for j := range vec {
				vec[j] /= n
			}
		}
		out[i] = vec
	}
	return out, nil
}

// staticSource returns a fixed corpus and counts how often it was asked.
type staticSource struct {
	mu    sync.Mutex
	docs  []story.Document
	calls int
	gate  chan struct{}
}

func (s *staticSource) Documents(ctx context.Context) ([]story.Document, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return append([]story.Document(nil), s.docs...), nil
}

func (s *staticSource) set(docs []story.Document) {
	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
}

func testDocs() []story.Document {
	return []story.Document{
		{
			ID:      "root/zakhmi-parinda",
			Title:   "زخمی پرندہ",
			Content: "علی ایک اچھا بچہ تھا۔ ایک دن اس نے ایک زخمی پرندہ دیکھا۔ علی نے پرندے کی مرہم پٹی کی۔",
		},
		{
			ID:      "poems/chanda",
			Title:   "چندا ماموں",
			Content: "چندا ماموں دور کے۔ بڑے پکائیں بور کے۔",
		},
	}
}
