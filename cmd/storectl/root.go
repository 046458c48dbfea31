package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/infrastructure/config"
	"github.com/xgrltd/storefront/internal/infrastructure/logger"
	"github.com/xgrltd/storefront/internal/infrastructure/persistence"
	"github.com/xgrltd/storefront/internal/infrastructure/storage"
)

// app carries what the commands share. openStore is replaced in tests.
type app struct {
	configPath string
	verbose    bool
	out        io.Writer
	openStore  func(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.KeyValueStore, func(), error)
}

func newApp() *app {
	return &app{out: os.Stdout, openStore: openStore}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Inspect and maintain a storefront deployment",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config.toml (default: ./config.toml or /etc/storefront/config.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log what the command does")
	root.SetOut(a.out)
	root.SetErr(a.out)

	root.AddCommand(
		newIdentityCmd(a),
		newRoutesCmd(a),
		newCatalogCmd(a),
		newFormatCmd(a),
		newMigrateCmd(a),
	)
	return root
}

func (a *app) logger() *zap.Logger {
	if !a.verbose {
		return zap.NewNop()
	}
	log, err := logger.New(&logger.Config{Level: "debug", Format: "console", Output: "stderr"})
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (a *app) config() (*config.Config, error) {
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured identity storage backend. The returned
// func releases it.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.KeyValueStore, func(), error) {
	var db *persistence.Database
	if cfg.Storage.Backend == config.StorageBackendDatabase {
		var err error
		db, err = persistence.NewDatabase(&cfg.Database, persistence.WithLogger(logger.NewGormLogger(log, logger.ParseGormLevel("warn"))))
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := db.AutoMigrate(); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
	}

	kv, err := storage.NewKeyValueStore(ctx, cfg, storage.Backends{Database: db}, log)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, err
	}
	return kv, func() {
		_ = kv.Close()
		if db != nil {
			_ = db.Close()
		}
	}, nil
}
