package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/storage"
	"kahani-ai/internal/story"
	"kahani-ai/internal/vectorstore"
)

// DocumentSource supplies the corpus for a build.
type DocumentSource interface {
	Documents(ctx context.Context) ([]story.Document, error)
}

// BuildRecorder persists a summary of each published generation.
type BuildRecorder interface {
	Record(ctx context.Context, rec storage.BuildRecord) error
}

// Generation is a fully built, searchable index.
type Generation struct {
	Collection string
	Stats      BuildStats
	BuiltAt    time.Time
}

// Hit is one search result.
type Hit struct {
	Chunk Chunk
	// Score is a distance for L2 stores and a similarity for cosine stores.
	Score float32
}

// Index is the text-level vector index over the story corpus.
// Builds alternate between two collections, "<base>_blue" and "<base>_green";
// a generation is published only after it is completely written, and the
// previous generation stays untouched until the following build. A search
// whose generation is recycled under it is retried once on the newest one.
type Index struct {
	pipeline       *Pipeline
	embedder       Embedder
	vectorStore    vectorstore.VectorStore
	source         DocumentSource
	recorder       BuildRecorder
	baseCollection string

	current atomic.Pointer[Generation]
	builds  singleflight.Group
	// requested counts Rebuild calls; a build covers every request made before it read the source.
	requested atomic.Uint64
}

// buildResult is what one singleflight run hands to everyone waiting on it.
type buildResult struct {
	gen *Generation
	// covers is the last Rebuild request issued before the source was read.
	covers uint64
}

// NewIndex creates an Index. recorder may be nil.
func NewIndex(pipeline *Pipeline, source DocumentSource, recorder BuildRecorder, baseCollection string) *Index {
	return &Index{
		pipeline:       pipeline,
		embedder:       pipeline.embedder,
		vectorStore:    pipeline.vectorStore,
		source:         source,
		recorder:       recorder,
		baseCollection: baseCollection,
	}
}

// Current returns the published generation, or nil before the first build.
func (ix *Index) Current() *Generation {
	return ix.current.Load()
}

// Metric reports how hit scores are to be read.
func (ix *Index) Metric() vectorstore.Metric {
	return ix.vectorStore.Metric()
}

// EnsureBuilt returns the published generation, building one first if none exists.
func (ix *Index) EnsureBuilt(ctx context.Context) (*Generation, error) {
	if gen := ix.current.Load(); gen != nil {
		return gen, nil
	}
	res, err := ix.build(ctx, false)
	if err != nil {
		return nil, err
	}
	return res.gen, nil
}

// Rebuild builds a new generation from the source and publishes it.
// Concurrent calls share one build, but a build that read the source before
// this call was made does not count: Rebuild then waits for the next one.
func (ix *Index) Rebuild(ctx context.Context) (*Generation, error) {
	seq := ix.requested.Add(1)
	for {
		res, err := ix.build(ctx, true)
		if res != nil && res.covers >= seq {
			return res.gen, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "joined a build that predates the rebuild request, building again")
	}
}

func (ix *Index) build(ctx context.Context, force bool) (*buildResult, error) {
	ch := ix.builds.DoChan("build", func() (any, error) {
		covers := ix.requested.Load()
		if gen := ix.current.Load(); gen != nil && !force {
			return &buildResult{gen: gen}, nil
		}
		// The build outlives a single caller's cancellation
		gen, err := ix.doBuild(context.WithoutCancel(ctx))
		return &buildResult{gen: gen, covers: covers}, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		out, _ := res.Val.(*buildResult)
		return out, res.Err
	}
}

func (ix *Index) doBuild(ctx context.Context) (*Generation, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := ix.source.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	collection := ix.nextCollection()
	stats, err := ix.pipeline.IndexAll(ctx, collection, docs)
	if err != nil {
		logger.ErrorContext(ctx, "index build failed", "collection", collection, "error", err)
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	gen := &Generation{
		Collection: collection,
		Stats:      stats,
		BuiltAt:    time.Now(),
	}
	ix.current.Store(gen)

	if ix.recorder != nil {
		rec := storage.BuildRecord{
			Collection: collection,
			Stories:    stats.DocsProcessed,
			Chunks:     stats.ChunksEmbedded,
			Duration:   stats.Duration,
		}
		if err := ix.recorder.Record(ctx, rec); err != nil {
			logger.WarnContext(ctx, "failed to record index build", "error", err)
		}
	}

	logger.InfoContext(ctx, "index generation published", "collection", collection, "chunks", stats.ChunksEmbedded)
	return gen, nil
}

// nextCollection picks the collection not used by the published generation.
func (ix *Index) nextCollection() string {
	blue, green := ix.baseCollection+"_blue", ix.baseCollection+"_green"
	if gen := ix.current.Load(); gen != nil && gen.Collection == blue {
		return green
	}
	return blue
}

// Search embeds query and returns up to k chunks, best first.
// A non-empty storyID restricts results to that document.
func (ix *Index) Search(ctx context.Context, query string, k int, storyID string) ([]Hit, error) {
	gen, err := ix.EnsureBuilt(ctx)
	if err != nil {
		return nil, err
	}

	vectors, err := ix.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, errors.New("embedder returned no vector for query")
	}

	var filters map[string]any
	if storyID != "" {
		filters = map[string]any{PayloadStoryID: storyID}
	}

	results, err := ix.vectorStore.Search(ctx, gen.Collection, vectors[0], k, filters)
	if err != nil {
		// Two rebuilds since gen was loaded recycle its collection; the newest one is safe to read
		latest := ix.current.Load()
		if latest == nil || latest == gen {
			return nil, fmt.Errorf("failed to search index: %w", err)
		}
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "search on superseded generation failed, retrying",
			"collection", gen.Collection, "latest", latest.Collection, "error", err)
		gen = latest
		if results, err = ix.vectorStore.Search(ctx, gen.Collection, vectors[0], k, filters); err != nil {
			return nil, fmt.Errorf("failed to search index: %w", err)
		}
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{Chunk: ChunkFromPayload(r.Meta), Score: r.Score})
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "index search",
		"collection", gen.Collection, "k", k, "story_id", storyID, "hits", len(hits))
	return hits, nil
}
