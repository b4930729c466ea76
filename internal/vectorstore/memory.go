package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"kahani-ai/internal/contextutil"
)

type memoryCollection struct {
	vectorSize int
	points     []Point
	positions  map[string]int
}

// MemoryStore is an in-process VectorStore ranking by L2 distance.
// Contents are lost when the process exits.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// Metric reports MetricL2.
func (s *MemoryStore) Metric() Metric {
	return MetricL2
}

// EnsureCollection creates the collection if needed and validates its vector size.
func (s *MemoryStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[collection]; ok {
		if c.vectorSize != vectorSize {
			return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, c.vectorSize)
		}
		return nil
	}

	s.collections[collection] = &memoryCollection{
		vectorSize: vectorSize,
		positions:  make(map[string]int),
	}
	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "collection created", "collection", collection, "vector_size", vectorSize)
	return nil
}

// DropCollection removes the collection.
func (s *MemoryStore) DropCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	delete(s.collections, collection)
	s.mu.Unlock()
	return nil
}

// Count returns the number of points in the collection.
func (s *MemoryStore) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection %s does not exist", collection)
	}
	return len(c.points), nil
}

// Upsert inserts or updates points. An updated point keeps its original position.
func (s *MemoryStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection %s does not exist", collection)
	}

	for _, p := range points {
		if len(p.Vec) != c.vectorSize {
			return fmt.Errorf("point %s: %w: expected %d, got %d", p.ID, ErrDimensionMismatch, c.vectorSize, len(p.Vec))
		}
	}

	for _, p := range points {
		stored := Point{ID: p.ID, Vec: append([]float32(nil), p.Vec...), Meta: p.Meta}
		if pos, exists := c.positions[p.ID]; exists {
			c.points[pos] = stored
			continue
		}
		c.positions[p.ID] = len(c.points)
		c.points = append(c.points, stored)
	}
	return nil
}

// Search returns the k nearest points by ascending L2 distance.
func (s *MemoryStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}
	if len(query) != c.vectorSize {
		return nil, fmt.Errorf("query: %w: expected %d, got %d", ErrDimensionMismatch, c.vectorSize, len(query))
	}

	results := make([]SearchResult, 0, len(c.points))
	for _, p := range c.points {
		if !matchesFilters(p.Meta, filters) {
			continue
		}
		results = append(results, SearchResult{
			PointID: p.ID,
			Score:   l2Distance(query, p.Vec),
			Meta:    p.Meta,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func matchesFilters(meta map[string]any, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := meta[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func l2Distance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
