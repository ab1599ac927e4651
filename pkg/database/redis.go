package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// InitRedis dials the cache/graph backend. A nil client is a valid result:
// it means the accelerated paths are disabled and every caller must take
// its durable fallback. Connection failure is therefore a warning, not an
// error.
func InitRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		logger.Info("redis disabled by config, durable fallbacks only")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, durable fallbacks only", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}
