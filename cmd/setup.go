package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gitlab.com/appserver.net/internal/adapter/logging"
	"gitlab.com/appserver.net/internal/config"
)

const shutdownTimeout = 5 * time.Second

// setupLogger builds the role's logger; the --log-level flag beats the environment
func setupLogger(role string) (*logging.ZapLogger, error) {
	logCfg, err := config.New[config.LogConfig]()
	if err != nil {
		return nil, err
	}
	level := logCfg.Level
	if logLevel != "" {
		level = logLevel
	}

	logger, err := logging.NewZapLogger(level)
	if err != nil {
		return nil, err
	}
	return logger.Named(role), nil
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(ctx context.Context, cfg config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// setupRedis sets up the Redis connection
func setupRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// waitForShutdown blocks until SIGINT/SIGTERM or ctx ends
func waitForShutdown(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	}
}
