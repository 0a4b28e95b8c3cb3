package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"payengine/internal/engine"
	"payengine/internal/history"
	"payengine/internal/infra"
	"payengine/internal/obs"
	"payengine/internal/storage"
)

// Bootstrap orchestrates the application startup sequence: config, logger,
// archive store, sinks, cache, processor.
type Bootstrap struct {
	Config    *infra.Config
	Store     *storage.ArchiveStore
	Sink      engine.Sink
	Processor *engine.Processor

	metricsServer *http.Server
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	var fallback history.Fallback
	var archiver history.Archiver

	if cfg.Archive.Path != "" {
		if err := infra.EnsureParentDir(cfg.Archive.Path); err != nil {
			return err
		}
		store, err := storage.NewArchiveStore(cfg.Archive.Path)
		if err != nil {
			return fmt.Errorf("failed to open archive store: %w", err)
		}
		b.Store = store
		fallback = store
		archiver = store

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		now := time.Now().Unix()
		if err := store.UpsertMetadata(ctx, "last_run_unix", strconv.FormatInt(now, 10), now); err != nil {
			slog.Warn("failed to record run metadata", slog.Any("error", err))
		}
	}

	sinks := obs.MultiSink{obs.NewSlogSink(logger)}
	if cfg.Metrics.Addr != "" {
		prom := obs.NewPromSink(logger)
		b.metricsServer = prom.StartServer(cfg.Metrics.Addr)
		sinks = append(sinks, prom)
	}
	b.Sink = sinks

	cache := history.NewCache(cfg.Engine.HistoryCapacity, fallback, archiver)
	b.Processor = engine.NewProcessor(cfg.Engine.InboxSize, cache, b.Sink)

	slog.Info("bootstrap complete",
		slog.Int("history_capacity", cfg.Engine.HistoryCapacity),
		slog.Bool("archive", b.Store != nil))

	return nil
}

// Shutdown releases resources acquired during Initialize.
func (b *Bootstrap) Shutdown(ctx context.Context) {
	if b.metricsServer != nil {
		if err := b.metricsServer.Shutdown(ctx); err != nil {
			slog.Warn("metrics server shutdown failed", slog.Any("error", err))
		}
	}
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			slog.Warn("archive store close failed", slog.Any("error", err))
		}
	}
}
