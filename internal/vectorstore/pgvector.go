package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"kahani-ai/internal/contextutil"
)

// PGVectorStore implements VectorStore on PostgreSQL with the pgvector extension.
// Each collection is a table; payloads are stored as jsonb. Ranking is by cosine similarity.
type PGVectorStore struct {
	pool *pgxpool.Pool
}

// NewPGVectorStore connects to PostgreSQL and enables the vector extension.
func NewPGVectorStore(ctx context.Context, connStr string) (*PGVectorStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgvector pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to pgvector database: %w", err)
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to enable vector extension: %w", err)
	}

	return &PGVectorStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PGVectorStore) Close() {
	s.pool.Close()
}

// Metric reports MetricCosine.
func (s *PGVectorStore) Metric() Metric {
	return MetricCosine
}

// EnsureCollection creates the collection table if needed and validates its vector size.
func (s *PGVectorStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}

	table := tableIdentifier(collection)
	createStmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		seq BIGSERIAL,
		embedding vector(%d) NOT NULL,
		payload JSONB NOT NULL DEFAULT '{}'::jsonb
	)`, table, vectorSize)
	if _, err := s.pool.Exec(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create collection table: %w", err)
	}

	// For the vector type atttypmod holds the declared dimensions
	var actualSize int
	err := s.pool.QueryRow(ctx,
		"SELECT atttypmod FROM pg_attribute WHERE attrelid = $1::regclass AND attname = 'embedding'",
		table,
	).Scan(&actualSize)
	if err != nil {
		return fmt.Errorf("failed to read collection vector size: %w", err)
	}
	if actualSize != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actualSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// DropCollection drops the collection table.
func (s *PGVectorStore) DropCollection(ctx context.Context, collection string) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+tableIdentifier(collection)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// Count returns the number of rows in the collection table.
func (s *PGVectorStore) Count(ctx context.Context, collection string) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+tableIdentifier(collection)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

// Upsert inserts or updates points in one batch.
func (s *PGVectorStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, embedding, payload) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, payload = EXCLUDED.payload`,
		tableIdentifier(collection))

	batch := &pgx.Batch{}
	for _, point := range points {
		meta := point.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		batch.Queue(query, point.ID, pgvector.NewVector(point.Vec), meta)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search returns the k most similar points. Score is 1 - cosine distance.
func (s *PGVectorStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	sqlQuery, args := buildSearchQuery(tableIdentifier(collection), pgvector.NewVector(query), k, filters)
	rows, err := s.pool.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, k)
	for rows.Next() {
		var result SearchResult
		var score float64
		if err := rows.Scan(&result.PointID, &score, &result.Meta); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		result.Score = float32(score)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// buildSearchQuery renders the similarity query with one payload equality clause per filter.
// Ties are broken by insertion order.
func buildSearchQuery(table string, query pgvector.Vector, k int, filters map[string]any) (string, []any) {
	args := []any{query}

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var where []string
	for _, key := range keys {
		args = append(args, key, fmt.Sprint(filters[key]))
		where = append(where, fmt.Sprintf("payload->>$%d::text = $%d", len(args)-1, len(args)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT id, 1 - (embedding <=> $1) AS score, payload FROM %s", table)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, k)
	fmt.Fprintf(&sb, " ORDER BY embedding <=> $1, seq LIMIT $%d", len(args))

	return sb.String(), args
}

func tableIdentifier(collection string) string {
	return pgx.Identifier{collection}.Sanitize()
}
