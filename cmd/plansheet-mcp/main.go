// Package main provides the entry point for the plansheet MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"plansheet/internal/config"
	"plansheet/internal/kvstore"
	"plansheet/internal/metrics"
	"plansheet/internal/schema"
	"plansheet/internal/server"
	"plansheet/internal/service"
	"plansheet/internal/sheets"
	"plansheet/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load("")
	if err != nil {
		os.Stderr.WriteString("plansheet-mcp: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Setup logger (stderr text + rotating file JSON + in-memory ring)
	logger, _, cleanup := config.SetupLogger(cfg)
	defer func() { _ = cleanup() }()

	logger.Info("plansheet-mcp starting",
		"version", version,
		"base_url", cfg.SheetsBaseURL,
		"cache_ttl", cfg.CacheTTL.String(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	collector := metrics.NewCollector()
	client := sheets.NewClient(
		sheets.StaticTokenSource(cfg.AccessToken),
		logger,
		sheets.Options{
			BaseURL:   cfg.SheetsBaseURL,
			RetryBase: cfg.RetryBaseDelay,
			Collector: collector,
		},
	)

	store := kvstore.NewFileStore(cfg.CachePath)
	cache := schema.NewCache(store, cfg.CacheTTL, logger)
	planner := service.NewPlanner(client, cache, store, nil, logger)

	srv := server.New(version, logger)
	srv.Setup()

	deps := &tools.Dependencies{
		Planner: planner,
		Logger:  logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps)
	logger.Info("tools registered", "count", 4)

	logger.Info("server ready, awaiting connections")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	snap := collector.Snapshot()
	for op, stats := range snap.Operations {
		logger.Info("request stats",
			"op", op,
			"count", stats.Count,
			"failures", stats.Failures,
			"retries", stats.Retries,
			"avg_ms", stats.AvgTimeMs)
	}

	logger.Info("shutdown complete")
}
