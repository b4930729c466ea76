package rag

import (
	"context"
	"errors"
	"testing"
)

type failingEmbedder struct{}

func (failingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedder down")
}

func TestValidator_IsValid(t *testing.T) {
	passage := "علی ایک اچھا بچہ تھا۔ ایک دن اس نے ایک زخمی پرندہ دیکھا۔"

	tests := []struct {
		name     string
		response string
		embedder Embedder
		want     bool
	}{
		{
			name:     "too short",
			response: "پرندہ",
			embedder: hashEmbedder{},
			want:     false,
		},
		{
			name:     "quoted from context",
			response: "زخمی پرندہ دیکھا",
			embedder: hashEmbedder{},
			want:     true,
		},
		{
			name:     "more than three shared words",
			response: "علی نے ایک زخمی پرندہ دیکھا تھا",
			embedder: hashEmbedder{},
			want:     true,
		},
		{
			name:     "unrelated text",
			response: "آج موسم بہت سرد ہے",
			embedder: tableEmbedder{"آج موسم بہت سرد ہے": unit(0), passage: unit(1)},
			want:     false,
		},
		{
			name:     "semantically close without overlap",
			response: "بچے نے چڑیا کو بچایا",
			embedder: tableEmbedder{"بچے نے چڑیا کو بچایا": unit(1), passage: unit(1)},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(tt.embedder, 0, 0)
			got, err := v.IsValid(context.Background(), tt.response, passage)
			if err != nil {
				t.Fatalf("IsValid() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.response, got, tt.want)
			}
		})
	}
}

func TestValidator_EmbedderError(t *testing.T) {
	v := NewValidator(failingEmbedder{}, 0, 0)
	if _, err := v.IsValid(context.Background(), "آج موسم بہت سرد ہے", "علی ایک اچھا بچہ تھا۔"); err == nil {
		t.Error("IsValid() expected embedder error, got nil")
	}
}

func unit(axis int) []float32 {
	v := make([]float32, 4)
	v[axis] = 1
	return v
}
