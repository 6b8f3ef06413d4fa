package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tool-catalog/internal/middleware/logger"
	"tool-catalog/internal/tool_catalog/cache"
	"tool-catalog/internal/tool_catalog/helper"
	"tool-catalog/internal/tool_catalog/importer"
	"tool-catalog/internal/tool_catalog/narrative"
	"tool-catalog/pkg/config"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "tool_catalog",
		Short:         "Tool catalog service and spreadsheet importer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to the yaml config file")

	root.AddCommand(newServeCommand(&configPath), newImportCommand(&configPath))
	return root
}

// deps is everything both commands build from the config.
type deps struct {
	cfg      *config.Config
	log      *zap.Logger
	stores   *helper.Stores
	cache    cache.Cache
	importer *importer.Importer

	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func setup(ctx context.Context, configPath string) (*deps, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	d := &deps{cfg: cfg, log: log}
	d.closers = append(d.closers, func() { _ = log.Sync() })

	stores, err := helper.Connect(ctx, cfg.Mongo)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	d.stores = stores
	d.closers = append(d.closers, func() { _ = stores.Close(context.Background()) })

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, log, cfg.Redis)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		d.cache = rc
		d.closers = append(d.closers, func() { _ = rc.Close() })
	} else {
		log.Info("No redis address configured, using in-process view cache")
		d.cache = cache.NewMemory(cfg.Redis.TTL)
	}

	gen, err := narrative.New(ctx, log, cfg.Narrative)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("create narrative generator: %w", err)
	}

	d.importer = importer.New(log, stores, d.cache, gen, cfg.Narrative.Workers)
	return d, nil
}
