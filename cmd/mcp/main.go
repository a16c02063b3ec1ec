package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/jwpark-dev/lawsearch/internal/adapters/mcp"
	"github.com/jwpark-dev/lawsearch/internal/bootstrap"
	"github.com/jwpark-dev/lawsearch/internal/config"
	"github.com/jwpark-dev/lawsearch/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		err := app.Queue.SubscribeCorpusReindexed(ctx, func(context.Context) error {
			app.Cache.Purge()
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("corpus event subscription failed", "error", err)
		}
	}()

	srv := mcpadapter.NewServer(cfg.MCPServerName, version, app.Search, app.Search)
	logger.Info("mcp server starting on stdio", "name", cfg.MCPServerName)
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
