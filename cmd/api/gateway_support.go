package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/auth/postgres"
	"github.com/yourusername/authgate/internal/config"
	"github.com/yourusername/authgate/internal/identity/gotrue"
	"github.com/yourusername/authgate/internal/web"
)

// authBackend は設定に応じて選んだ Auth Gateway とその後始末です。
type authBackend struct {
	gateway  auth.Gateway
	provider auth.IdentityProvider // provider 方式のときのみ
	close    func()
}

func setupGateway(ctx context.Context, cfg *config.Config, log *slog.Logger) (*authBackend, error) {
	switch cfg.AuthStrategy {
	case config.AuthStrategyProvider:
		client, err := gotrue.NewClient(cfg.ProviderURL, cfg.ProviderAnonKey, gotrue.Options{
			Timeout:   time.Duration(cfg.ProviderTimeoutSeconds) * time.Second,
			JWTSecret: cfg.ProviderJWTSecret,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create identity provider client: %w", err)
		}
		return &authBackend{
			gateway:  auth.NewProviderGateway(client, log),
			provider: client,
			close:    func() {},
		}, nil

	case config.AuthStrategyTable:
		hasher := auth.NewBcryptHasher(cfg.BcryptCost)
		if cfg.DatabaseURL == "" {
			log.Warn("DATABASE_URL is not set; credentials are kept in memory")
			return &authBackend{
				gateway: auth.NewTableGateway(auth.NewMemoryTable(), hasher, log),
				close:   func() {},
			}, nil
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		table := postgres.NewCredentialTable(pool)
		if err := table.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &authBackend{
			gateway: auth.NewTableGateway(table, hasher, log),
			close:   pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown auth strategy: %q", cfg.AuthStrategy)
}

// newRedisClient はセッション保存かアクティビティログで Redis を使う場合のみクライアントを作ります。
func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.SessionPersistence != config.PersistenceRedis && !cfg.AuditEnabled {
		return nil, nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opt), nil
}

func setupStores(cfg *config.Config, rdb *redis.Client, provider auth.IdentityProvider, log *slog.Logger) web.StoreFactory {
	pf := web.CookiePersistence()
	if cfg.SessionPersistence == config.PersistenceRedis {
		pf = web.RedisPersistence(rdb, log)
	}
	if cfg.SessionStrategy == config.SessionStrategyProvider && provider != nil {
		log.Info("sessions are revalidated with the identity provider")
		return web.ProviderStores(pf, provider, log)
	}
	return web.LocalStores(pf, log)
}
