package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vetdesk/vetdesk/config"
	httpx "github.com/vetdesk/vetdesk/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Ready    func(context.Context) error // Optional
	Logger   *slog.Logger
}

// NewHTTPServer builds the API server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	svcs := cfg.Services
	if svcs == nil {
		svcs = &ServiceContainer{}
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Auth:      svcs.Auth,
		Customers: svcs.Customers,
		Dogs:      svcs.Dogs,
		Catalog:   svcs.Catalog,
		Invoices:  svcs.Invoices,
		Diagnoses: svcs.Diagnoses,
		Users:     svcs.Users,
		Portal:    svcs.Portal,
		Cookies: httpx.CookieConfig{
			Name:        appCfg.Auth.CookieName,
			Domain:      appCfg.HTTP.CookieDomain,
			ForceSecure: appCfg.Auth.SecureCookies,
		},
		Logger:  logger,
		Metrics: svcs.Metrics,
		Ready:   cfg.Ready,
	})

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: appCfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// StartHTTPServer serves in the background. A listen failure is sent on errCh.
func StartHTTPServer(server *http.Server, logger *slog.Logger, errCh chan<- error) {
	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
}

// ShutdownHTTPServer drains in-flight requests within timeout.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("HTTP server stopped")
	return nil
}

// ReadinessCheck pings Postgres and, when caching is on, Redis.
func ReadinessCheck(db *sql.DB, client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		if client != nil {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}
