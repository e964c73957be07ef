package main

import (
	"context"

	"github.com/spf13/cobra"

	"gitlab.com/appserver.net/internal/config"
	"gitlab.com/appserver.net/internal/core/services/loadbalance"
	"gitlab.com/appserver.net/internal/core/services/registry"
	"gitlab.com/appserver.net/internal/core/services/satellite"
	"gitlab.com/appserver.net/internal/handlers/jobs"
	"gitlab.com/appserver.net/internal/handlers/satellites"
	http2 "gitlab.com/appserver.net/internal/http"
	"gitlab.com/appserver.net/internal/tcp"
	"gitlab.com/appserver.net/internal/tcp/dispatch"
)

func newCoordinatorCmd() *cobra.Command {
	var serverProperties string

	cmd := &cobra.Command{
		Use:   "coordinator",
		Short: "Accept satellite registrations and relay job requests round-robin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New[config.CoordinatorConfig]()
			if err != nil {
				return err
			}
			if err := readProperties(serverProperties, cfg.ApplyServerProperties); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCoordinator(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&serverProperties, "properties", "", "Server.properties file (HOST, PORT)")
	return cmd
}

func runCoordinator(ctx context.Context, cfg *config.CoordinatorConfig) error {
	logger, err := setupLogger("coordinator")
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting coordinator", "address", cfg.Address(), "hopTimeout", cfg.HopTimeout.String())

	// services
	satelliteSvc := satellite.NewSatelliteService(registry.NewSatelliteRegistry(), loadbalance.NewRoundRobin(), logger)
	dispatcher := dispatch.NewDispatcher(satelliteSvc, logger, dispatch.WithHopTimeout(cfg.HopTimeout))

	//server
	tcpServer := tcp.NewCoordinatorServer(satelliteSvc, dispatcher, logger,
		tcp.WithAddress(cfg.Address()),
		tcp.WithReadTimeout(cfg.HopTimeout),
	)
	if err := tcpServer.Start(); err != nil {
		return err
	}

	var adminServer *http2.Server
	if cfg.AdminPort > 0 {
		adminServer = http2.NewServer(cfg.AdminPort, "coordinator-admin", logger,
			satellites.NewSatelliteHandler(satelliteSvc, logger),
			jobs.NewJobHandler(dispatcher, logger),
		)
		if err := adminServer.Start(ctx); err != nil {
			_ = tcpServer.Stop(ctx)
			return err
		}
	}

	waitForShutdown(ctx)
	logger.Info("Shutting down coordinator...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if adminServer != nil {
		if err := adminServer.Stop(shutdownCtx); err != nil {
			logger.Error("Admin server forced to shutdown", "error", err)
		}
	}
	if err := tcpServer.Stop(shutdownCtx); err != nil {
		logger.Error("TCP server forced to shutdown", "error", err)
	}

	logger.Info("successfully shutdown coordinator")
	return nil
}
