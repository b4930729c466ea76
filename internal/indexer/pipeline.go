package indexer

import (
	"context"
	"fmt"
	"time"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/story"
	"kahani-ai/internal/vectorstore"
)

// embedBatchSize bounds the number of chunks embedded and upserted together.
const embedBatchSize = 64

// Embedder maps texts to fixed-size vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline writes a corpus into a vector collection: chunk, embed, upsert.
type Pipeline struct {
	embedder       Embedder
	vectorStore    vectorstore.VectorStore
	vectorSize     int
	embeddingModel string
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(embedder Embedder, vectorStore vectorstore.VectorStore, vectorSize int, embeddingModel string) *Pipeline {
	return &Pipeline{
		embedder:       embedder,
		vectorStore:    vectorStore,
		vectorSize:     vectorSize,
		embeddingModel: embeddingModel,
	}
}

// IndexAll writes every document into a freshly created collection.
// Any existing contents of the collection are dropped first.
// A failure leaves the collection partially written; callers must not publish it.
func (p *Pipeline) IndexAll(ctx context.Context, collection string, docs []story.Document) (BuildStats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	if err := p.vectorStore.DropCollection(ctx, collection); err != nil {
		return BuildStats{}, fmt.Errorf("failed to clear collection %s: %w", collection, err)
	}
	if err := p.vectorStore.EnsureCollection(ctx, collection, p.vectorSize); err != nil {
		return BuildStats{}, fmt.Errorf("failed to create collection %s: %w", collection, err)
	}

	collector := newStatsCollector(collection)
	var chunks []Chunk
	for _, doc := range docs {
		docChunks := DocumentChunks(doc)
		if len(docChunks) == 0 {
			logger.WarnContext(ctx, "no chunks generated", "story_id", doc.ID)
		}
		collector.addDocument(docChunks)
		chunks = append(chunks, docChunks...)
	}

	logger.InfoContext(ctx, "starting indexing", "collection", collection, "documents", len(docs), "chunks", len(chunks))

	for i := 0; i < len(chunks); i += embedBatchSize {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return BuildStats{}, ctx.Err()
		default:
		}

		end := min(i+embedBatchSize, len(chunks))
		if err := p.indexBatch(ctx, collection, chunks[i:end]); err != nil {
			return BuildStats{}, err
		}
	}

	count, err := p.vectorStore.Count(ctx, collection)
	if err != nil {
		return BuildStats{}, fmt.Errorf("failed to verify collection %s: %w", collection, err)
	}
	if count != len(chunks) {
		return BuildStats{}, fmt.Errorf("collection %s holds %d points, expected %d", collection, count, len(chunks))
	}

	stats := collector.finish(count, p.embeddingModel, p.vectorSize, time.Since(start))
	logger.InfoContext(ctx, "indexing completed",
		"collection", collection,
		"documents", stats.DocsProcessed,
		"chunks", stats.ChunksEmbedded,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (p *Pipeline) indexBatch(ctx context.Context, collection string, chunks []Chunk) error {
	// Extract chunk texts for embedding
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		if len(embeddings[i]) != p.vectorSize {
			return fmt.Errorf("chunk %s: %w: expected %d, got %d", chunk.Key(), vectorstore.ErrDimensionMismatch, p.vectorSize, len(embeddings[i]))
		}
		points[i] = vectorstore.Point{
			ID:   chunk.PointID(),
			Vec:  embeddings[i],
			Meta: chunk.Payload(),
		}
	}

	if err := p.vectorStore.Upsert(ctx, collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return nil
}
