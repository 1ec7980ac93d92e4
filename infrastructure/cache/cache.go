package cache

import (
	"context"
	"fmt"
	"time"

	"postpilot/infrastructure/configuration"
	"postpilot/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis. Returns nil when no host is configured; callers
// treat a nil client as "cache disabled".
func NewCache() *redis.Client {
	cfg := configuration.C.RedisClient
	if cfg.Host == "" {
		logger.GetLogger().Info("Redis host not configured, cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis unreachable, cache disabled")
		_ = client.Close()
		return nil
	}
	return client
}
