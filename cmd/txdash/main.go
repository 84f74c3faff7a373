package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"txdash/internal/cli"
	apphttp "txdash/internal/http"
	applog "txdash/internal/log"
	"txdash/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	result := cli.MustOpenBackend(ctx, logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err.Error())
		}
	}()

	seeder := services.NewSeeder(result.Store, cfg.SeedURL, cfg.SeedTimeout)
	deps := apphttp.Dependencies{
		Queries:     services.NewQueryService(result.Store),
		Seeder:      seeder,
		Pinger:      result.Store,
		BackendName: cfg.DataBackend,
	}
	if result.Messaging != nil {
		seeder.WithEvents(result.Messaging)
		deps.SeedRequests = result.Messaging
	}

	opts := apphttp.DefaultOptions()
	opts.RequestTimeout = cfg.RequestTimeout
	opts.RateLimitPerMinute = cfg.RateLimitPerMinute
	opts.CORSAllowedOrigins = cfg.CORSAllowedOrigins
	opts.TrustedProxies = cfg.TrustedProxies
	opts.Logger = logger

	srv := apphttp.NewServer(":"+cfg.Port, deps, opts)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.SeedTimeout + 10*time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting txdash server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"messaging", result.Messaging != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
			stop()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err.Error())
	}
	logger.Info("Server stopped gracefully")
}
