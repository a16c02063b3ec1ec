package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/jwpark-dev/lawsearch/internal/adapters/http"
	"github.com/jwpark-dev/lawsearch/internal/bootstrap"
	"github.com/jwpark-dev/lawsearch/internal/config"
	"github.com/jwpark-dev/lawsearch/internal/observability/logging"
	"github.com/jwpark-dev/lawsearch/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	app.Cache.SetObserver(func(event string) {
		serverMetrics.RecordCacheEvent("api", event)
	})

	go func() {
		err := app.Queue.SubscribeCorpusReindexed(ctx, func(context.Context) error {
			app.Cache.Purge()
			logger.Info("result cache purged after corpus reindex")
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("corpus event subscription failed", "error", err)
		}
	}()

	router := httpadapter.NewRouter(app.Search, app.Search, httpadapter.RouterOptions{
		Metrics:        serverMetrics,
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
	}).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
