package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"kahani-ai/internal/app"
	"kahani-ai/internal/cli"
	"kahani-ai/internal/config"
	"kahani-ai/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(load)
	root.SetOut(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// load builds the application for one command; logs go to stderr so answers stay pipeable.
func load(ctx context.Context) (*cli.Services, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logging.New(os.Stderr, cfg))

	a, err := app.Build(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := a.LoadModel(ctx); err != nil {
		slog.Warn("Model autoload failed", "error", err)
	}

	return &cli.Services{
		Ask:     a.AskService,
		Stories: a.StoryService,
		Index:   a.IndexService,
		Refresh: func(ctx context.Context) error {
			_, err := a.Source.Documents(ctx)
			return err
		},
		Warm: func(ctx context.Context) error {
			_, err := a.Index.EnsureBuilt(ctx)
			return err
		},
		ChunkWords: cfg.ChunkSize,
	}, a.Close, nil
}
