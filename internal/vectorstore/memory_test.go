package vectorstore

import (
	"context"
	"errors"
	"testing"
)

func newTestMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	if err := store.EnsureCollection(context.Background(), "stories", 2); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	return store
}

func TestMemoryStore_EnsureCollection(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, "stories", 2); err != nil {
		t.Errorf("EnsureCollection() second call error = %v", err)
	}
	if err := store.EnsureCollection(ctx, "stories", 3); err == nil {
		t.Error("EnsureCollection() with different size should return error")
	}
	if err := store.EnsureCollection(ctx, "other", 0); err == nil {
		t.Error("EnsureCollection() with size 0 should return error")
	}
}

func TestMemoryStore_Search(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	points := []Point{
		{ID: "a", Vec: []float32{0, 0}, Meta: map[string]any{"story_id": "s1"}},
		{ID: "b", Vec: []float32{3, 4}, Meta: map[string]any{"story_id": "s1"}},
		{ID: "c", Vec: []float32{1, 0}, Meta: map[string]any{"story_id": "s2"}},
		{ID: "d", Vec: []float32{0, 1}, Meta: map[string]any{"story_id": "s2"}},
	}
	if err := store.Upsert(ctx, "stories", points); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		name    string
		query   []float32
		k       int
		filters map[string]any
		wantIDs []string
	}{
		{
			name:    "nearest by L2, ties keep insertion order",
			query:   []float32{0, 0},
			k:       3,
			wantIDs: []string{"a", "c", "d"},
		},
		{
			name:    "filtered",
			query:   []float32{0, 0},
			k:       5,
			filters: map[string]any{"story_id": "s1"},
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "filter with no match",
			query:   []float32{0, 0},
			k:       5,
			filters: map[string]any{"story_id": "missing"},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Search(ctx, "stories", tt.query, tt.k, tt.filters)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(results) != len(tt.wantIDs) {
				t.Fatalf("Search() returned %d results, want %d", len(results), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if results[i].PointID != id {
					t.Errorf("results[%d] = %s, want %s", i, results[i].PointID, id)
				}
			}
		})
	}

	results, _ := store.Search(ctx, "stories", []float32{0, 0}, 4, nil)
	if results[3].PointID != "b" || results[3].Score != 5 {
		t.Errorf("farthest result = %+v, want b at distance 5", results[3])
	}
}

func TestMemoryStore_UpsertReplaces(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	_ = store.Upsert(ctx, "stories", []Point{{ID: "a", Vec: []float32{1, 1}}, {ID: "b", Vec: []float32{2, 2}}})
	_ = store.Upsert(ctx, "stories", []Point{{ID: "a", Vec: []float32{0, 0}, Meta: map[string]any{"v": 2}}})

	count, err := store.Count(ctx, "stories")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	results, _ := store.Search(ctx, "stories", []float32{0, 0}, 1, nil)
	if results[0].PointID != "a" || results[0].Meta["v"] != 2 {
		t.Errorf("Upsert() did not replace point: %+v", results[0])
	}
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, "stories", []Point{{ID: "ok", Vec: []float32{1, 1}}, {ID: "bad", Vec: []float32{1, 2, 3}}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Upsert() error = %v, want ErrDimensionMismatch", err)
	}
	// Nothing from a rejected batch is stored
	if count, _ := store.Count(ctx, "stories"); count != 0 {
		t.Errorf("Count() = %d after rejected batch, want 0", count)
	}

	if _, err := store.Search(ctx, "stories", []float32{1}, 1, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestMemoryStore_DropCollection(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	if err := store.DropCollection(ctx, "stories"); err != nil {
		t.Fatalf("DropCollection() error = %v", err)
	}
	if _, err := store.Count(ctx, "stories"); err == nil {
		t.Error("Count() on dropped collection should return error")
	}
	if err := store.DropCollection(ctx, "stories"); err != nil {
		t.Errorf("DropCollection() on missing collection error = %v", err)
	}
	if _, err := store.Search(ctx, "stories", []float32{0, 0}, 0, nil); err == nil {
		t.Error("Search() with k=0 should return error")
	}
	if store.Metric() != MetricL2 {
		t.Errorf("Metric() = %v, want l2", store.Metric())
	}
}
