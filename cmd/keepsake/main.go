package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/afriel/keepsake/internal/analysis"
	"github.com/afriel/keepsake/internal/caption"
	"github.com/afriel/keepsake/internal/config"
	"github.com/afriel/keepsake/internal/importer"
	"github.com/afriel/keepsake/internal/logging"
	"github.com/afriel/keepsake/internal/router"
	"github.com/afriel/keepsake/internal/storage/sqlite"
)

func main() {
	bootstrapLogger := logging.New(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open sqlite database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close sqlite database", "error", err)
		}
	}()

	deps := router.Dependencies{
		Store:    store,
		Importer: importer.New(store, logger),
	}

	if cfg.CaptionAPIKey != "" {
		captioner := caption.New(cfg.CaptionBaseURL, cfg.CaptionAPIKey, cfg.CaptionModel, logger)
		gate := analysis.NewGate()
		deps.Analyzer = analysis.NewAnalyzer(store.Photos(), captioner, gate, logger)
		deps.Scheduler = analysis.NewScheduler(deps.Analyzer, store.Photos(), cfg.AnalyzeInterval, logger)
	} else {
		logger.Warn("no captioning API key configured, analysis endpoints disabled")
	}

	logger.Info("starting server", "addr", cfg.Addr, "analyzeInterval", cfg.AnalyzeInterval)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router.New(cfg, logger, deps),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if deps.Scheduler != nil {
			deps.Scheduler.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
