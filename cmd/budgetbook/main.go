package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetbook/internal/backend"
	"budgetbook/internal/cli"
	apphttp "budgetbook/internal/http"
	"budgetbook/internal/middleware/security"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port,
		apphttp.Services{
			Incomes:  result.Services.Incomes,
			Expenses: result.Services.Expenses,
			Goals:    result.Services.Goals,
		},
		result.Store,
		apphttp.Options{
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			CORSOrigins:        security.ParseOrigins(cfg.CORSOrigin),
			TrustedProxies:     cfg.TrustedProxyCIDRs(),
			Logger:             logger,
		})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting budgetbook server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		_ = result.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
