package main

import (
	"fmt"
	"log/slog"

	"github.com/fermata-io/purgatory"
	"github.com/fermata-io/purgatory/internal/config"
	"github.com/fermata-io/purgatory/internal/logging"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func logLevel(cfg *config.Config) slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore builds a store against the configured backend and recovers the
// ledger. The returned closer releases the backend connection.
func openStore(cmd *cobra.Command, opts ...purgatory.Option) (*purgatory.Store, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	backend, closer, err := cfg.OpenBackend()
	if err != nil {
		return nil, nil, err
	}

	opts = append([]purgatory.Option{
		purgatory.WithBackend(backend),
		purgatory.WithLogger(logging.New(logLevel(cfg))),
	}, opts...)
	store := purgatory.New(opts...)

	if _, err := store.Recover(cmd.Context()); err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("recovery failed: %w", err)
	}

	return store, closer, nil
}
