package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/surfai/internal/domain/prediction"
	"github.com/yanqian/surfai/internal/domain/sessions"
	"github.com/yanqian/surfai/internal/domain/spots"
	"github.com/yanqian/surfai/internal/infra/config"
	"github.com/yanqian/surfai/internal/infra/profilestore"
	"github.com/yanqian/surfai/internal/infra/sessionrepo"
	"github.com/yanqian/surfai/internal/infra/weather/stormglass"
)

func providePredictionConfig(cfg *config.Config) prediction.Config {
	return prediction.Config{
		Weights:     cfg.AI.Weights,
		MinSessions: cfg.AI.MinSessions,
	}
}

func provideSpotCatalog() *spots.Catalog {
	return spots.NewFrenchAtlanticCatalog()
}

func provideForecaster(cfg *config.Config, logger *slog.Logger) prediction.Forecaster {
	if !cfg.Stormglass.Enabled {
		logger.Info("stormglass disabled, condition auto-completion unavailable")
		return nil
	}
	return stormglass.NewClient(cfg.Stormglass.BaseURL, cfg.Stormglass.APIKey)
}

func provideProfileStore(cfg *config.Config, logger *slog.Logger) prediction.ProfileStore {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return profilestore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return profilestore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey profile store enabled", "addr", cfg.Cache.Addr)
			return profilestore.NewValkeyStore(client, "profile", cfg.Cache.ProfileTTL)
		}
	}
	return profilestore.NewMemoryStore()
}

func provideSessionRepository(cfg *config.Config, logger *slog.Logger) sessions.Repository {
	fallback := sessionrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory session repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory session repository", "error", err)
		return fallback
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory session repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory session repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres session repository enabled")
	return sessionrepo.NewPostgresRepository(pool)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
