// Package cli provides common CLI initialization utilities shared by
// cmd/txdash, cmd/txdash-worker and cmd/txdash-report.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"txdash/internal/backend"
	"txdash/internal/config"
	applog "txdash/internal/log"
)

// SetupLogger builds a text logger at the given level, installs it as the
// slog default and returns it. An unknown level falls back to info with a
// warning.
func SetupLogger(level string) *applog.Logger {
	lvl, err := applog.ParseLevel(level)

	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	logger := applog.New(cfg)
	applog.SetDefault(logger)

	if err != nil {
		logger.Warn("Falling back to info log level", applog.FieldError, err.Error())
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend builds the configured store and optional messaging client.
func OpenBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	return result, nil
}

// MustOpenBackend is OpenBackend that exits the process on failure.
func MustOpenBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.BackendResult {
	result, err := OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err.Error(),
			"backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal handler.
func GracefulShutdown(logger *applog.Logger) (context.Context, context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := cancelOnSignal(logger, sigs)
	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}

// cancelOnSignal cancels the context when a signal arrives on sigs. Only a
// signal is logged; calling cancel stays silent.
func cancelOnSignal(logger *applog.Logger, sigs <-chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case sig := <-sigs:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
