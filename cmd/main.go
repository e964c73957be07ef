package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitlab.com/appserver.net/internal/config"
)

var (
	envName  string
	logLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "appserver",
		Short:         "Coordinator / satellite job execution fabric",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(envName); err != nil {
				return err
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "load <env>.env before reading APPSERVER_* variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override APPSERVER_LOG_LEVEL")

	rootCmd.AddCommand(
		newCoordinatorCmd(),
		newSatelliteCmd(),
		newCodeServerCmd(),
		newSubmitCmd(),
		newToolsCmd(),
	)
	return rootCmd
}

func readProperties(path string, apply func(*config.Properties)) error {
	if path == "" {
		return nil
	}
	props, err := config.ReadProperties(path)
	if err != nil {
		return fmt.Errorf("error reading properties: %w", err)
	}
	apply(props)
	return nil
}
