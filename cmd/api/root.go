package main

import (
	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/internal/logger"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Backend for the Bajrang Painters website",
		Long: `Serves the project gallery, the contact prompt sessions, the contact form
and the email relay used by the Bajrang Painters website.

Without a subcommand the HTTP server is started.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; the environment wins.
			_ = godotenv.Load()
		},
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(newCatalogCmd())
	return cmd
}

// loadConfig reads the configuration and builds the process logger from it.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat), nil
}
