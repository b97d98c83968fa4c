package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watchtower/internal/metrics"
	"watchtower/internal/tasks"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().IntP("concurrency", "n", 0, "number of tasks run at once (default from config)")
	workerCmd.Flags().String("metrics-addr", "", "serve task metrics on this address, e.g. :9100")
}

var workerCmd = &cobra.Command{
	Use:     "worker",
	Short:   "consume and run queued tasks",
	Example: "watchtower worker --concurrency 8 --metrics-addr :9100",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, results, closeFn, err := connectTasks(ctx, cfg.Tasks)
		if err != nil {
			return err
		}
		defer closeFn()

		prometheusMetrics, err := metrics.NewPrometheusMetrics(
			metrics.WithLogger(logger.WithField("component", "metrics")),
		)
		if err != nil {
			return err
		}

		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		if metricsAddr != "" {
			server := &http.Server{
				Addr:              metricsAddr,
				Handler:           prometheusMetrics.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("metrics server stopped")
				}
			}()
			defer server.Close()
		}

		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency < 1 {
			concurrency = cfg.Tasks.Concurrency
		}

		worker := tasks.NewWorker(&tasks.Config{
			Broker:      broker,
			Results:     results,
			Registry:    tasks.DefaultRegistry(),
			Observer:    prometheusMetrics,
			Logger:      logger,
			Concurrency: concurrency,
			PollTimeout: 5 * time.Second,
		})

		return worker.Run(ctx)
	},
}
