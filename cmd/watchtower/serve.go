package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "watchtower/api/v1"
	"watchtower/internal/db"
	"watchtower/internal/inventory"
	"watchtower/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("migrate", false, "run schema migration before serving")
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "serve the inventory HTTP API",
	Example: "watchtower serve --config watchtower.ini",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		gormDB, err := db.Open(cfg.Database, logger.WithField("component", "db"))
		if err != nil {
			return err
		}
		defer db.Close(gormDB)

		migrate, _ := cmd.Flags().GetBool("migrate")
		if migrate || cfg.Migrate {
			if err := db.Migrate(gormDB, logger); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		prometheusMetrics, err := metrics.NewPrometheusMetrics(
			metrics.WithLogger(logger.WithField("component", "metrics")),
			metrics.WithDatabase(gormDB),
		)
		if err != nil {
			return err
		}
		go prometheusMetrics.RunCollector(ctx, time.Duration(cfg.Metrics.CollectIntervalSec)*time.Second)

		service := inventory.NewService(gormDB, inventory.WithLogger(logger.WithField("component", "inventory")))

		gin.SetMode(gin.ReleaseMode)
		engine := v1.NewEngine(service, v1.Options{
			Logger:      logger,
			Metrics:     prometheusMetrics,
			CORSOrigins: cfg.CORS.AllowOrigins,
		})

		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", cfg.HTTPAddr).Info("Server starting")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	},
}
