package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/vetdesk/vetdesk/config"
	"github.com/vetdesk/vetdesk/internal/bootstrap"
)

// infra is the set of connections a command opened. close releases them.
type infra struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

func (i *infra) close(logger *slog.Logger) {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			logger.Warn("db close failed", "error", err)
		}
	}
}

// connectInfra opens Postgres and, when wantCache is set and the cache is enabled, Redis,
// so writes made by the command invalidate what the API has cached.
func connectInfra(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig, wantCache bool) (*infra, error) {
	dbCfg := bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}
	db, err := bootstrap.ConnectDB(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	out := &infra{DB: db}
	if !wantCache || !cfg.Cache.Enabled {
		return out, nil
	}

	client, err := bootstrap.ConnectRedis(ctx, dbCfg)
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close database: %w", cerr))
		}
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	out.Redis = client
	return out, nil
}
