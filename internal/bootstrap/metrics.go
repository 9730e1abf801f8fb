package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vetdesk/vetdesk/config"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
)

// ConnectMetrics returns a StatsD client, or nil when metrics are disabled.
func ConnectMetrics(ctx context.Context, cfg config.MetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	if !cfg.IsEnabled() {
		return nil, nil //nolint:nilnil // disabled metrics are not an error
	}
	client, err := statsd.NewClient(ctx, statsd.Config{
		Address:    cfg.StatsdAddress,
		Prefix:     cfg.Prefix,
		GlobalTags: cfg.GlobalTags(),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect metrics: %w", err)
	}
	logger.InfoContext(ctx, "metrics enabled", "statsd_address", cfg.StatsdAddress, "prefix", cfg.Prefix)
	return client, nil
}
