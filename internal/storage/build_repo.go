package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// BuildRecord describes one completed index generation.
type BuildRecord struct {
	ID         int64
	Collection string
	Stories    int
	Chunks     int
	Duration   time.Duration
	BuiltAt    time.Time
}

// BuildRepo records index generations.
type BuildRepo struct {
	db *sql.DB
}

// NewBuildRepo creates a new BuildRepo.
func NewBuildRepo(db *sql.DB) *BuildRepo {
	return &BuildRepo{db: db}
}

// Record stores a completed build.
func (r *BuildRepo) Record(ctx context.Context, rec BuildRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO index_builds (collection, stories, chunks, duration_ms) VALUES (?, ?, ?, ?)",
		rec.Collection, rec.Stories, rec.Chunks, rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record index build: %w", err)
	}
	return nil
}

// Latest returns the most recent build. Returns ErrNotFound if none was recorded.
func (r *BuildRepo) Latest(ctx context.Context) (*BuildRecord, error) {
	var rec BuildRecord
	var durationMs int64
	var builtAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, collection, stories, chunks, duration_ms, built_at FROM index_builds ORDER BY id DESC LIMIT 1",
	).Scan(&rec.ID, &rec.Collection, &rec.Stories, &rec.Chunks, &durationMs, &builtAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query index build: %w", err)
	}

	rec.Duration = time.Duration(durationMs) * time.Millisecond

	// Parse built_at DATETIME string
	rec.BuiltAt, err = time.Parse("2006-01-02 15:04:05", builtAtStr)
	if err != nil {
		// Try alternative format (SQLite might use different format)
		rec.BuiltAt, err = time.Parse(time.RFC3339, builtAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse built_at timestamp: %w", err)
		}
	}

	return &rec, nil
}
