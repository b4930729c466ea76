package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kahani-ai/internal/app"
	"kahani-ai/internal/config"
	"kahani-ai/internal/logging"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about Urdu children's stories.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Kahani AI API
//   description: |
//     Question answering over a directory of Urdu stories and poems.
//     Benchmark questions are answered from story metadata; other questions
//     are answered from retrieved story text by a local language model.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()

	if err := a.LoadModel(ctx); err != nil {
		// The server may already have the model; questions will fail loudly if not
		slog.Warn("Model autoload failed", "error", err)
	}

	// Validate embedding client vector size (fail-fast)
	if err := a.CheckEmbedder(ctx); err != nil {
		log.Fatalf("Embedding client check failed: %v", err)
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingVectorSize)

	// Build the index in the background; the first question waits for it
	go func() {
		slog.Info("Starting background indexing of stories", "dir", cfg.StoriesDir)
		if _, err := a.Index.EnsureBuilt(ctx); err != nil {
			slog.Error("Indexing completed with errors", "error", err)
		}
	}()

	if a.Watcher != nil {
		go func() {
			if err := a.Watcher.Run(ctx); err != nil {
				slog.Error("Stories watcher stopped", "error", err)
			}
		}()
	}

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "provider", cfg.LLMProvider, "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
}
