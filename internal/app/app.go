package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gabriel/raw-source-finder/internal/cache"
	"github.com/gabriel/raw-source-finder/internal/config"
	"github.com/gabriel/raw-source-finder/internal/database"
	"github.com/gabriel/raw-source-finder/internal/database/migrations"
	"github.com/gabriel/raw-source-finder/internal/lookup"
	"github.com/gabriel/raw-source-finder/internal/matcher"
	"github.com/gabriel/raw-source-finder/internal/resolver"
	"github.com/gabriel/raw-source-finder/internal/searchengine"
	"github.com/gabriel/raw-source-finder/internal/sources"
	"github.com/gabriel/raw-source-finder/internal/webfetch"
)

// Components is the wired lookup pipeline shared by the binaries.
type Components struct {
	Registry *sources.Registry
	Rotator  *searchengine.Rotator
	Lookup   *lookup.Service
	Cache    *cache.Store

	db *sql.DB
}

// Build wires the pipeline from cfg. Backend declaration problems are logged
// and the valid declarations kept; only cache storage failures are fatal.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fetcher := webfetch.NewClient(&http.Client{
		Timeout: time.Duration(cfg.PageFetchTimeoutSeconds) * time.Second,
	}, cfg.UserAgent)

	backends, err := searchengine.BuildBackends(cfg.SearchBackendsPath, fetcher)
	if err != nil {
		logger.Warn("search backends loaded with warnings", "error", err)
	}

	rotator := searchengine.NewRotator(backends, searchengine.RotatorConfig{
		Strategy:       cfg.SearchStrategy,
		AttemptTimeout: time.Duration(cfg.SearchAttemptTimeoutSeconds) * time.Second,
	}, logger)

	registry := sources.Default()
	service := lookup.NewService(
		resolver.New(rotator, fetcher, cfg.IndexDomain, logger),
		matcher.New(registry, rotator, cfg.LookupConcurrency, logger),
		cfg.EnglishInputPolicy,
		logger,
	)

	components := &Components{
		Registry: registry,
		Rotator:  rotator,
		Lookup:   service,
	}

	if cfg.CacheEnabled {
		db, err := database.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open cache database %s: %w", cfg.SQLitePath, err)
		}
		if err := database.ApplyMigrations(ctx, db, migrations.FS); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate cache database: %w", err)
		}
		components.db = db
		components.Cache = cache.NewStore(db)
	}

	logger.Info("lookup pipeline ready",
		"sources", registry.Len(),
		"backends", rotator.Names(),
		"strategy", rotator.Strategy(),
		"englishPolicy", service.EnglishPolicy(),
		"cache", cfg.CacheEnabled,
	)
	return components, nil
}

func (c *Components) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
