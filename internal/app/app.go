package app

import (
	"context"
	"fmt"
	"log/slog"

	"salesdash/internal/config"
	"salesdash/internal/db"
	"salesdash/internal/ingest"
	"salesdash/internal/repository"
	"salesdash/internal/service"
	"salesdash/internal/store"
)

// App holds the wired storage tiers and the service built on them.
type App struct {
	Service *service.Service
	Gateway *store.Gateway
	// Repository is set only when the fallback tier is PostgreSQL.
	Repository *repository.Repository

	closers []func()
}

func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	fast, err := store.NewFileStore(cfg.DataDir, cfg.FastStoreQuotaBytes)
	if err != nil {
		return nil, fmt.Errorf("open fast store: %w", err)
	}

	var fallback store.Backend
	if cfg.UsesPostgres() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{})
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if _, err := db.RunMigrations(ctx, pool, logger); err != nil {
			a.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		a.Repository = repository.New(pool)
		fallback = a.Repository
		logger.Info("fallback store ready", "backend", "postgres")
	} else {
		sqlite, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := sqlite.Close(); err != nil {
				logger.Warn("close sqlite store", "error", err)
			}
		})
		fallback = sqlite
		logger.Info("fallback store ready", "backend", "sqlite", "path", cfg.SQLitePath)
	}

	a.Gateway = store.NewGateway(fast, fallback, logger)
	ingester := ingest.New(
		ingest.WithBatchSize(cfg.IngestBatchSize),
		ingest.WithWorkers(cfg.IngestWorkers),
		ingest.WithLogger(logger),
	)
	a.Service = service.New(a.Gateway, service.Options{
		Ingester:   ingester,
		PreviewTTL: cfg.PreviewTTL,
		Logger:     logger,
	})
	return a, nil
}

// Close releases the fallback store in reverse opening order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
