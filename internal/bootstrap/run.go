package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vetdesk/vetdesk/config"
)

// RunConfig contains everything RunWithShutdown needs.
type RunConfig struct {
	Config *config.AppConfig
	Server *http.Server
	Logger *slog.Logger
}

// RunWithShutdown serves until SIGINT, SIGTERM, ctx cancellation or a server failure,
// then shuts the server down gracefully.
func RunWithShutdown(ctx context.Context, cfg RunConfig) error {
	if cfg.Config == nil || cfg.Server == nil {
		return errors.New("run config requires Config and Server")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	StartHTTPServer(cfg.Server, logger, errCh)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	timeout := cfg.Config.HTTP.ShutdownTimeout
	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
		return ShutdownHTTPServer(context.WithoutCancel(ctx), cfg.Server, timeout, logger)
	case <-ctx.Done():
		return ShutdownHTTPServer(context.WithoutCancel(ctx), cfg.Server, timeout, logger)
	case err := <-errCh:
		logger.Error("service error", "error", err)
		return err
	}
}
