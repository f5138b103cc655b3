package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel/raw-source-finder/internal/app"
	"github.com/gabriel/raw-source-finder/internal/config"
	apihttp "github.com/gabriel/raw-source-finder/internal/http"
	"github.com/gabriel/raw-source-finder/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	components, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to build lookup pipeline", "error", err)
		os.Exit(1)
	}
	defer components.Close()

	server := apihttp.NewServer(cfg, apihttp.Dependencies{
		Registry: components.Registry,
		Lookup:   components.Lookup,
		Rotator:  components.Rotator,
		Cache:    components.Cache,
		Logger:   logger,
	})

	prunerCtx, prunerCancel := context.WithCancel(context.Background())
	var pruner *scheduler.Pruner
	if components.Cache != nil {
		pruner = scheduler.NewPruner(components.Cache, scheduler.PrunerConfig{
			Interval: time.Duration(cfg.CachePruneMinutes) * time.Minute,
		}, logger)
		pruner.Start(prunerCtx)
	}

	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	prunerCancel()
	if pruner != nil {
		pruner.StopWait(2 * time.Second)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
