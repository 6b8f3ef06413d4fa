package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tool-catalog/internal/tool_catalog/api"
	"tool-catalog/internal/tool_catalog/scheduler"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the stale import sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := setup(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()
			log, cfg := d.log, d.cfg

			log.Info("Starting tool catalog service...")

			worker := &scheduler.Worker{
				Log:        log,
				Store:      d.stores,
				Interval:   cfg.Import.SweepInterval,
				StaleAfter: cfg.Import.StaleAfter,
			}
			go worker.Run(ctx)

			if cfg.Server.Mode != "" {
				gin.SetMode(cfg.Server.Mode)
			}
			srv := &api.Server{
				Log:            log,
				Stores:         d.stores,
				Cache:          d.cache,
				Importer:       d.importer,
				MaxUploadBytes: cfg.Import.MaxUploadMB << 20,
			}
			r := srv.Router()
			_ = r.SetTrustedProxies(nil)

			httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
			errc := make(chan error, 1)
			go func() {
				log.Info("Tool catalog service is running", zap.String("address", cfg.Server.Addr))
				errc <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
}
