package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/appserver.net/internal/adapter/crypto"
	"gitlab.com/appserver.net/internal/adapter/http/toolsource"
	"gitlab.com/appserver.net/internal/adapter/logging"
	"gitlab.com/appserver.net/internal/adapter/redis/toolport"
	"gitlab.com/appserver.net/internal/config"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/core/services/toolcache"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/satellite"
	"gitlab.com/appserver.net/internal/tools"
)

func newSatelliteCmd() *cobra.Command {
	var (
		satelliteProperties  string
		serverProperties     string
		codeServerProperties string
		name                 string
		port                 int
	)

	cmd := &cobra.Command{
		Use:   "satellite",
		Short: "Register with the coordinator and execute the jobs it relays",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New[config.SatelliteConfig]()
			if err != nil {
				return err
			}
			if err := readProperties(satelliteProperties, cfg.ApplySatelliteProperties); err != nil {
				return err
			}
			if err := readProperties(serverProperties, cfg.ApplyServerProperties); err != nil {
				return err
			}
			if err := readProperties(codeServerProperties, cfg.ApplyCodeServerProperties); err != nil {
				return err
			}
			if name != "" {
				cfg.Name = name
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSatellite(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&satelliteProperties, "properties", "", "Satellite.<name>.properties file (NAME, PORT)")
	cmd.Flags().StringVar(&serverProperties, "server-properties", "", "coordinator Server.properties file (HOST, PORT)")
	cmd.Flags().StringVar(&codeServerProperties, "codeserver-properties", "", "WebServer.properties file (HOST, PORT); selects the http tool source")
	cmd.Flags().StringVar(&name, "name", "", "satellite name, overrides APPSERVER_SATELLITE_NAME")
	cmd.Flags().IntVar(&port, "port", 0, "listen port, overrides APPSERVER_SATELLITE_PORT (0 picks a free port)")
	return cmd
}

func runSatellite(ctx context.Context, cfg *config.SatelliteConfig) error {
	logger, err := setupLogger("satellite")
	if err != nil {
		return err
	}
	defer logger.Sync()

	resolver, cleanup, err := newToolResolver(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	options := []satellite.Option{satellite.WithHopTimeout(cfg.HopTimeout)}
	if cfg.WaitAck {
		options = append(options, satellite.WithRegistrationAck())
	}

	self := domain.NewConnectivityDescriptor(cfg.Name, cfg.Host, cfg.Port)
	node := satellite.New(self, cfg.CoordinatorAddress(), resolver, logger, options...)
	if err := node.Start(ctx); err != nil {
		return err
	}

	logger.Info("Satellite running", "satellite", cfg.Name, "address", node.Descriptor().Address(), "toolSource", cfg.ToolSource)
	waitForShutdown(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := node.Stop(shutdownCtx); err != nil {
		logger.Error("Satellite forced to shutdown", "error", err)
	}

	logger.Info("successfully shutdown satellite")
	return nil
}

// newToolResolver wires the configured tool source behind the satellite's cache
func newToolResolver(cfg *config.SatelliteConfig, logger *logging.ZapLogger) (*toolcache.Resolver, func(), error) {
	catalog := tools.NewBuiltinCatalog(logger)
	cleanup := func() {}

	var source secondary.ToolSource
	switch cfg.ToolSource {
	case config.ToolSourceStatic:
		source = tools.NewStaticSource(catalog)
	case config.ToolSourceHTTP:
		source = toolsource.NewHTTPToolSource(cfg.CodeServerURL, cfg.HopTimeout, logger)
	case config.ToolSourceRedis:
		redisClient := setupRedis(cfg.RedisConfig)
		cleanup = func() { _ = redisClient.Close() }
		source = toolport.NewToolRepository(redisClient, logger)
	default:
		return nil, nil, fmt.Errorf("unknown tool source %q", cfg.ToolSource)
	}

	var options []toolcache.ResolverOption
	// static descriptors are compiled in and carry no signature
	if cfg.Secret != "" && cfg.ToolSource != config.ToolSourceStatic {
		signer, err := crypto.NewToolSigner(cfg.SigningConfig)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		options = append(options, toolcache.WithVerifier(signer))
	}

	return toolcache.NewResolver(source, catalog, logger, options...), cleanup, nil
}
