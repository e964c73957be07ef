package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/appserver.net/internal/adapter/crypto"
	"gitlab.com/appserver.net/internal/config"
	"gitlab.com/appserver.net/internal/domain"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage the tool descriptors a code server publishes",
	}
	cmd.AddCommand(newToolsPublishCmd(), newToolsListCmd())
	return cmd
}

func newToolsPublishCmd() *cobra.Command {
	var (
		backend    string
		descriptor domain.ToolDescriptor
		rawConfig  string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Store a tool descriptor, signed when APPSERVER_TOOL_SIGNING_SECRET is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New[config.CodeServerConfig]()
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Backend = backend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if descriptor.ID == "" {
				return fmt.Errorf("--id is required")
			}
			if descriptor.Kind == "" {
				descriptor.Kind = descriptor.ID
			}
			if rawConfig != "" {
				if !json.Valid([]byte(rawConfig)) {
					return fmt.Errorf("--config is not valid JSON")
				}
				descriptor.Config = json.RawMessage(rawConfig)
			}

			logger, err := setupLogger("tools")
			if err != nil {
				return err
			}
			defer logger.Sync()

			toPublish := &descriptor
			if cfg.Secret != "" {
				signer, err := crypto.NewToolSigner(cfg.SigningConfig)
				if err != nil {
					return err
				}
				if toPublish, err = signer.Sign(cmd.Context(), toPublish); err != nil {
					return err
				}
			}

			catalog, cleanup, err := openToolCatalog(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := catalog.SaveTool(cmd.Context(), toPublish); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s (kind %s, signed %t)\n", toPublish.ID, toPublish.Kind, toPublish.Signature != "")
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "postgres or redis, overrides APPSERVER_CODESERVER_BACKEND")
	cmd.Flags().StringVar(&descriptor.ID, "id", "", "tool identifier clients request")
	cmd.Flags().StringVar(&descriptor.Kind, "kind", "", "built-in kind that implements the tool (defaults to the id)")
	cmd.Flags().StringVar(&descriptor.Version, "version", "", "descriptor version")
	cmd.Flags().StringVar(&rawConfig, "config", "", "JSON configuration passed to the tool factory")
	return cmd
}

func newToolsListCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stored tool descriptors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New[config.CodeServerConfig]()
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Backend = backend
			}

			logger, err := setupLogger("tools")
			if err != nil {
				return err
			}
			defer logger.Sync()

			catalog, cleanup, err := openToolCatalog(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			descriptors, err := catalog.ListTools(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range descriptors {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tkind=%s\tversion=%s\tsigned=%t\n", d.ID, d.Kind, d.Version, d.Signature != "")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "postgres or redis, overrides APPSERVER_CODESERVER_BACKEND")
	return cmd
}
