package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/clipforge/config"
	"github.com/bnema/clipforge/internal/adapter/storage/jsonfile"
	"github.com/bnema/clipforge/internal/adapter/storage/sqlite"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/port"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clipforge",
		Short:         "Render queue for short vertical marketing videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newQueueCommand())
	rootCmd.AddCommand(newHashPasswordCommand())

	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the job store selected by STORE_BACKEND. The returned
// function releases it.
func openStore(cfg *config.Config) (port.JobStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendSQLite:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.StoreBackendJSON, "":
		store, err := jsonfile.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
