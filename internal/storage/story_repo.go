package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_story_store.go -package=mocks kahani-ai/internal/storage StoryStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"kahani-ai/internal/story"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// StoryStore defines the interface for story document storage.
type StoryStore interface {
	// ReplaceAll atomically replaces the whole catalogue with docs.
	ReplaceAll(ctx context.Context, docs []story.Document) error
	// GetByID gets a document by its exact id. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*story.Document, error)
	// ListAll returns every document ordered by id.
	ListAll(ctx context.Context) ([]story.Document, error)
}

// StoryRepo provides methods for story operations.
// It implements the StoryStore interface.
type StoryRepo struct {
	db *sql.DB
}

// NewStoryRepo creates a new StoryRepo.
func NewStoryRepo(db *sql.DB) *StoryRepo {
	return &StoryRepo{db: db}
}

// Upsert inserts a document or replaces the stored copy with the same id.
func (r *StoryRepo) Upsert(ctx context.Context, doc story.Document) error {
	return upsertStory(ctx, r.db, doc)
}

// ReplaceAll deletes every stored document and inserts docs in one transaction.
func (r *StoryRepo) ReplaceAll(ctx context.Context, docs []story.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM stories"); err != nil {
		return fmt.Errorf("failed to clear stories: %w", err)
	}

	for _, doc := range docs {
		if err := upsertStory(ctx, tx, doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stories: %w", err)
	}
	return nil
}

// GetByID gets a document by its exact id.
// Returns nil and ErrNotFound if not found.
func (r *StoryRepo) GetByID(ctx context.Context, id string) (*story.Document, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT document FROM stories WHERE id = ?", id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query story: %w", err)
	}

	doc, err := decodeStory(id, raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListAll returns every document ordered by id.
// Returns an empty slice if the catalogue is empty (not an error).
func (r *StoryRepo) ListAll(ctx context.Context) ([]story.Document, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, document FROM stories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := make([]story.Document, 0)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		doc, err := decodeStory(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stories: %w", err)
	}

	return docs, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertStory(ctx context.Context, db execer, doc story.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("story id is required")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode story %s: %w", doc.ID, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO stories (id, title, age_group, type, language, document, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		 title = excluded.title, age_group = excluded.age_group, type = excluded.type,
		 language = excluded.language, document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Title, doc.AgeGroup, doc.Type, doc.Language, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert story %s: %w", doc.ID, err)
	}
	return nil
}

func decodeStory(id, raw string) (story.Document, error) {
	var doc story.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return story.Document{}, fmt.Errorf("failed to decode stored story %s: %w", id, err)
	}
	doc.ID = id
	return doc, nil
}
