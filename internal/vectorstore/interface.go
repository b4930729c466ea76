package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks kahani-ai/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// Metric identifies how a store ranks results.
type Metric string

const (
	// MetricL2 ranks by ascending Euclidean distance.
	MetricL2 Metric = "l2"
	// MetricCosine ranks by descending cosine similarity.
	MetricCosine Metric = "cosine"
)

// ErrDimensionMismatch is returned when a vector does not match the collection size.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
// Score is a distance for MetricL2 stores and a similarity for MetricCosine
// stores. Results are always ordered best-first; ties keep insertion order.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection if needed and validates its vector size.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// DropCollection removes the collection and all of its points. Missing collections are not an error.
	DropCollection(ctx context.Context, collection string) error

	// Count returns the number of points stored in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search with optional equality filters on metadata.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Metric reports how Search scores results.
	Metric() Metric
}
