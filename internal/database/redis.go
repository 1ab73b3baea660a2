package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mroshb/quizbot/internal/config"
	"github.com/mroshb/quizbot/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a client and verifies the server answers.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return client, nil
}
