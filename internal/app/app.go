// Package app wires the process-wide services from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"kahani-ai/internal/config"
	"kahani-ai/internal/contextutil"
	kahttp "kahani-ai/internal/http"
	"kahani-ai/internal/indexer"
	"kahani-ai/internal/llm"
	"kahani-ai/internal/rag"
	"kahani-ai/internal/service"
	"kahani-ai/internal/storage"
	"kahani-ai/internal/vectorstore"
)

// App holds the services shared by every request.
type App struct {
	Config      *config.Config
	DB          *sql.DB
	Catalog     *storage.Catalog
	Builds      *storage.BuildRepo
	VectorStore vectorstore.VectorStore
	Embedder    rag.Embedder
	Generator   rag.Generator
	Source      *indexer.DirectorySource
	Index       *indexer.Index
	Engine      *rag.Engine

	AskService   service.AskService
	StoryService service.StoryService
	IndexService service.IndexService

	// Watcher is nil unless WATCH_STORIES is set.
	Watcher *indexer.Watcher

	closers []func() error
}

// Build opens storage and the vector backend and wires the answering pipeline.
// No model server is contacted; see CheckEmbedder and LoadModel.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := contextutil.LoggerFromContext(ctx)
	a := &App{Config: cfg}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	if err := storage.Migrate(db); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.InfoContext(ctx, "database initialized", "path", cfg.DBPath)

	a.Catalog = storage.NewCatalog(storage.NewStoryRepo(db))
	a.Builds = storage.NewBuildRepo(db)

	if a.VectorStore, err = a.openVectorStore(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.InfoContext(ctx, "vector store ready", "backend", cfg.VectorBackend, "metric", a.VectorStore.Metric())

	if a.Embedder, a.Generator, err = newModels(cfg); err != nil {
		_ = a.Close()
		return nil, err
	}

	pipeline := indexer.NewPipeline(a.Embedder, a.VectorStore, cfg.EmbeddingVectorSize, cfg.EmbeddingModelName)
	a.Source = indexer.NewDirectorySource(cfg.StoriesDir, a.Catalog)
	a.Index = indexer.NewIndex(pipeline, a.Source, a.Builds, cfg.QdrantCollection)

	a.Engine = rag.NewEngine(a.Catalog, a.Index, a.Embedder, a.Generator, rag.Options{
		SimilarityThreshold:     cfg.SimilarityThreshold,
		ContextOverlapThreshold: cfg.ContextOverlapThreshold,
		MinResponseLength:       cfg.MinResponseLength,
		DirectAnswerByKeyword:   cfg.DirectAnswerByKeyword,
	})

	a.AskService = service.NewAskService(a.Engine)
	a.StoryService = service.NewStoryService(a.Catalog)
	a.IndexService = service.NewIndexService(a.Index)

	if cfg.WatchStories {
		a.Watcher = indexer.NewWatcher(cfg.StoriesDir, a.Index)
	}

	return a, nil
}

func (a *App) openVectorStore(ctx context.Context) (vectorstore.VectorStore, error) {
	cfg := a.Config
	switch cfg.VectorBackend {
	case config.VectorBackendQdrant:
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case config.VectorBackendPGVector:
		store, err := vectorstore.NewPGVectorStore(ctx, cfg.PGVectorDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			store.Close()
			return nil
		})
		return store, nil
	default:
		return vectorstore.NewMemoryStore(), nil
	}
}

// newModels selects the embedder and generator. One Ollama client serves
// both roles when both providers are ollama.
func newModels(cfg *config.Config) (rag.Embedder, rag.Generator, error) {
	var ollama *llm.OllamaClient
	if cfg.EmbeddingProvider == config.ProviderOllama || cfg.LLMProvider == config.ProviderOllama {
		client, err := llm.NewOllamaClient(cfg.OllamaHost, cfg.LLMModelName, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize)
		if err != nil {
			return nil, nil, err
		}
		ollama = client
	}

	var embedder rag.Embedder
	if cfg.EmbeddingProvider == config.ProviderOllama {
		embedder = ollama
	} else {
		embedder = llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize)
	}

	var generator rag.Generator
	if cfg.LLMProvider == config.ProviderOllama {
		generator = ollama
	} else {
		generator = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	}
	return embedder, generator, nil
}

// CheckEmbedder embeds a probe text and verifies the vector size.
func (a *App) CheckEmbedder(ctx context.Context) error {
	vecs, err := a.Embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		return fmt.Errorf("failed to validate embedding client: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) != a.Config.EmbeddingVectorSize {
		got := 0
		if len(vecs) > 0 {
			got = len(vecs[0])
		}
		return fmt.Errorf("%w: expected %d, got %d", vectorstore.ErrDimensionMismatch, a.Config.EmbeddingVectorSize, got)
	}
	return nil
}

// LoadModel asks a llama.cpp router server to load the generation model.
// It is a no-op unless LLM_AUTOLOAD is set and the provider is llamacpp.
func (a *App) LoadModel(ctx context.Context) error {
	if !a.Config.LLMAutoLoad || a.Config.LLMProvider != config.ProviderLlamaCpp {
		return nil
	}
	loader := llm.NewModelLoader(a.Config.LLMBaseURL)
	if err := loader.LoadModel(ctx, a.Config.LLMModelName, nil); err != nil {
		return fmt.Errorf("failed to load model %s: %w", a.Config.LLMModelName, err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "model loaded", "model", a.Config.LLMModelName)
	return nil
}

// Router returns the HTTP API.
func (a *App) Router() http.Handler {
	return kahttp.NewRouter(&kahttp.Deps{
		AskService:   a.AskService,
		StoryService: a.StoryService,
		IndexService: a.IndexService,
		Index:        a.Index,
		VectorStore:  a.VectorStore,
	})
}

// Close releases storage and backend connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
