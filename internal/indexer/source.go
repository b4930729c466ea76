package indexer

import (
	"context"
	"fmt"

	"kahani-ai/internal/story"
)

// CatalogWriter receives the documents of every scan.
type CatalogWriter interface {
	Replace(ctx context.Context, docs []story.Document) error
}

// DirectorySource scans the stories directory on every build and refreshes the catalogue.
type DirectorySource struct {
	Dir     string
	Catalog CatalogWriter
}

// NewDirectorySource creates a DirectorySource.
func NewDirectorySource(dir string, catalog CatalogWriter) *DirectorySource {
	return &DirectorySource{Dir: dir, Catalog: catalog}
}

// Documents scans Dir, replaces the catalogue with the result and returns it.
func (s *DirectorySource) Documents(ctx context.Context) ([]story.Document, error) {
	docs, err := story.Scan(ctx, s.Dir)
	if err != nil {
		return nil, err
	}
	if err := s.Catalog.Replace(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to store documents: %w", err)
	}
	return docs, nil
}
