package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"travel-admin/config"
)

// Execute builds the command tree and runs it.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "travel-admin",
		Short: "Admin console API for The Kind Travel",
		Long: `travel-admin serves the admin console API: admin accounts and sessions,
password recovery, the trip catalog and image uploads.

Configuration is read from the environment (and an optional .env file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAdminCmd())

	return cmd
}

// loadConfig reads and validates configuration and installs the default
// logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg := config.Load()
	log := newLogger(cfg)
	slog.SetDefault(log)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
