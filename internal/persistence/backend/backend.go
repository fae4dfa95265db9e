// Package backend selects the RecommendationStore implementation named by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dsharma2002/FitGenie-AI/internal/config"
	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence/memory"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence/postgres"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence/redis"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

// Open connects the configured store. The returned func releases its connections.
func Open(ctx context.Context, cfg config.Config, log *logger.Logger) (domain.RecommendationStore, func(), error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("recommendation store ready", "backend", cfg.StoreBackend)
		return postgres.NewRepository(pool), pool.Close, nil
	case config.StoreRedis:
		rdb, err := redis.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		log.Info("recommendation store ready", "backend", cfg.StoreBackend, "addr", cfg.RedisAddr)
		return redis.NewStore(rdb), func() { _ = rdb.Close() }, nil
	case config.StoreMemory:
		log.Warn("recommendations are kept in memory and lost on restart")
		return memory.NewStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
