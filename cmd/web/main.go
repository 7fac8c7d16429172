package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"autosales-dashboard/internal/config"
	"autosales-dashboard/internal/dataset"
	"autosales-dashboard/internal/middleware"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/server"
	"autosales-dashboard/internal/services"
)

func newHandler(cfg *config.Config, dashboard *services.Dashboard, logger *slog.Logger) http.Handler {
	srv := server.NewServer(dashboard, logger)
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	loader := dataset.NewLoader(dataset.Options{
		FetchTimeout: cfg.Dataset.FetchTimeout,
		CacheDir:     cfg.Dataset.CacheDir,
		CacheMaxAge:  cfg.Dataset.CacheMaxAge,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dataset.FetchTimeout)
	defer cancel()

	start := time.Now()
	data, err := loader.Load(ctx, cfg.Dataset.Source)
	if err != nil {
		var loadErr *dataset.LoadError
		if errors.As(err, &loadErr) {
			logger.Error("failed to load dataset", "source", loadErr.Source, "error", loadErr.Err)
		} else {
			logger.Error("failed to load dataset", "error", err)
		}
		os.Exit(1)
	}
	logger.Info("dataset loaded successfully",
		"records", data.Len(),
		"duration", time.Since(start),
	)

	dashboard := services.NewDashboard(data, logger)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down dashboard", "records", data.Len())
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
