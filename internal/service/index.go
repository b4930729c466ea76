package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_rebuilder.go -package=mocks kahani-ai/internal/service Rebuilder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index_service.go -package=mocks -mock_names=IndexService=MockIndexService kahani-ai/internal/service IndexService

import (
	"context"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/indexer"
)

// Rebuilder builds a fresh index generation.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*indexer.Generation, error)
}

// IndexService defines the interface for index maintenance.
type IndexService interface {
	Rebuild(ctx context.Context) (indexer.BuildStats, error)
}

type indexService struct {
	rebuilder Rebuilder
}

// NewIndexService creates a new IndexService instance.
func NewIndexService(rebuilder Rebuilder) IndexService {
	return &indexService{rebuilder: rebuilder}
}

// Rebuild rebuilds the index from the stories directory.
// Embedding and vector backend failures wrap ErrExternalService.
func (s *indexService) Rebuild(ctx context.Context) (indexer.BuildStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	gen, err := s.rebuilder.Rebuild(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "index rebuild failed", "error", err)
		return indexer.BuildStats{}, backendError("rebuild index", err)
	}

	logger.InfoContext(ctx, "index rebuilt",
		"collection", gen.Collection,
		"docs", gen.Stats.DocsProcessed,
		"chunks", gen.Stats.ChunksEmbedded,
	)
	return gen.Stats, nil
}
