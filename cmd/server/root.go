package main

import (
	"document-archive/internal/config"
	"document-archive/internal/logging"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "archive",
		Short: "Document archive API server",
		Long: `Document archive serves the public document listing, the request gate for
private documents and the administrator archive.

Configuration is read from the environment, after loading a .env file from the
working directory or one of its parents. See internal/config for every variable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded

			logger, err = logging.New(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			for _, warning := range cfg.Warnings {
				logger.Warn(warning)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.AddCommand(getServeCmd())
	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getReindexCmd())
	rootCmd.AddCommand(getTokenCmd())

	return rootCmd
}
