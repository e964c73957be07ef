package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/appserver.net/internal/adapter/logging"
	"gitlab.com/appserver.net/internal/adapter/postgres/toolcatalog"
	"gitlab.com/appserver.net/internal/adapter/redis/toolport"
	"gitlab.com/appserver.net/internal/config"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/handlers/tools"
	http2 "gitlab.com/appserver.net/internal/http"
)

func newCodeServerCmd() *cobra.Command {
	var properties string

	cmd := &cobra.Command{
		Use:   "codeserver",
		Short: "Serve tool descriptors to satellites over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New[config.CodeServerConfig]()
			if err != nil {
				return err
			}
			if err := readProperties(properties, func(p *config.Properties) {
				if p.Port != 0 {
					cfg.Port = p.Port
				}
			}); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCodeServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&properties, "properties", "", "WebServer.properties file (PORT)")
	return cmd
}

func runCodeServer(ctx context.Context, cfg *config.CodeServerConfig) error {
	logger, err := setupLogger("codeserver")
	if err != nil {
		return err
	}
	defer logger.Sync()

	catalog, cleanup, err := openToolCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := http2.NewServer(cfg.Port, "codeserver", logger, tools.NewToolHandler(catalog, logger))
	if err := server.Start(ctx); err != nil {
		return err
	}

	waitForShutdown(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
	return nil
}

// openToolCatalog connects the configured descriptor store
func openToolCatalog(ctx context.Context, cfg *config.CodeServerConfig, logger *logging.ZapLogger) (secondary.ToolCatalogRepository, func(), error) {
	switch cfg.Backend {
	case config.BackendRedis:
		redisClient := setupRedis(cfg.RedisConfig)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return toolport.NewToolRepository(redisClient, logger), func() { _ = redisClient.Close() }, nil
	case config.BackendPostgres:
		db, err := setupDatabase(ctx, cfg.PostgresConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set up database: %w", err)
		}
		repo := toolcatalog.NewToolCatalogRepository(db, logger, "")
		if err := repo.EnsureTableExists(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown code server backend %q", cfg.Backend)
	}
}
