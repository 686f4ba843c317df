package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendwise/internal/backend"
	"spendwise/internal/cache"
	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	categorizer, err := cli.LoadCategorizer(cfg)
	if err != nil {
		logger.Error("Failed to load category rules", "error", err, "path", cfg.CategoryRulesFile)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	setupCtx := context.Background()
	be, err := backend.NewFactory(logger.Logger).CreateBackend(setupCtx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	dashboards := cache.NewLRUCache[services.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(dashboards)
	cacheManager.StartCleanup(cfg.CacheTTL)

	opts := []services.Option{
		services.WithCategorizer(categorizer),
		services.WithDefaultCurrency(cfg.DefaultCurrency),
		services.WithDashboardCache(dashboards),
		services.WithArchiver(backend.NewArchiver(setupCtx, cfg)),
		services.WithAdvisor(backend.NewAdvisor(setupCtx, cfg)),
	}
	if be.Publisher != nil {
		opts = append(opts, services.WithPublisher(be.Publisher))
	}
	ledger := services.NewLedgerService(be.Store, opts...)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		UploadMaxBytes:     cfg.UploadMaxBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigin:  cfg.CORSAllowedOrigin,
		Ready:              be.Store,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if err := ledger.Close(); err != nil {
			logger.Error("Failed to release backend", "error", err)
		}
	})

	logger.Info("Starting spendwise server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"default_currency", cfg.DefaultCurrency,
		"amqp", be.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
