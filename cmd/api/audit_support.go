package main

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/authgate/internal/audit"
	"github.com/yourusername/authgate/internal/config"
)

func setupAudit(cfg *config.Config, rdb *redis.Client, log *slog.Logger) (*audit.Manager, *audit.Store, error) {
	if rdb == nil {
		return nil, nil, fmt.Errorf("audit log requires redis")
	}
	store := audit.NewStore(rdb, cfg.AuditRetention)
	manager, err := audit.NewManager(cfg.RedisURL, store, log)
	if err != nil {
		return nil, nil, err
	}
	return manager, store, nil
}
