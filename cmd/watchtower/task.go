package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"watchtower/internal/config"
	"watchtower/internal/tasks"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskPingCmd)
	taskCmd.AddCommand(taskHealthCheckCmd)

	taskCmd.PersistentFlags().Duration("wait", 30*time.Second, "how long to wait for the result; 0 only enqueues")
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "enqueue a built-in task",
}

var taskPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "enqueue the ping task",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendTask(cmd, tasks.TaskPing)
	},
}

var taskHealthCheckCmd = &cobra.Command{
	Use:   "health-check",
	Short: "enqueue the health check task",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendTask(cmd, tasks.TaskHealthCheck)
	},
}

func sendTask(cmd *cobra.Command, name string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	broker, results, closeFn, err := connectTasks(ctx, cfg.Tasks)
	if err != nil {
		return err
	}
	defer closeFn()

	client := tasks.NewClient(broker, results)
	id, err := client.Send(ctx, name, nil)
	if err != nil {
		return err
	}
	logger.WithField("task_id", id).Infof("Enqueued %s", name)

	wait, _ := cmd.Flags().GetDuration("wait")
	if wait <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	result, err := client.Wait(waitCtx, id, 200*time.Millisecond)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if result.Status != tasks.StatusSuccess {
		return fmt.Errorf("task %s failed: %s", id, result.Error)
	}
	return nil
}

// connectTasks opens the broker and result backend, sharing one client
// when both point at the same redis
func connectTasks(ctx context.Context, cfg config.TasksConfig) (tasks.Broker, tasks.ResultBackend, func(), error) {
	brokerClient, err := tasks.NewRedisClient(ctx, cfg.BrokerURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("broker: %w", err)
	}

	resultClient := brokerClient
	if cfg.ResultBackendURL != cfg.BrokerURL {
		resultClient, err = tasks.NewRedisClient(ctx, cfg.ResultBackendURL)
		if err != nil {
			brokerClient.Close()
			return nil, nil, nil, fmt.Errorf("result backend: %w", err)
		}
	}

	closeFn := func() {
		brokerClient.Close()
		if resultClient != brokerClient {
			resultClient.Close()
		}
	}

	ttl := time.Duration(cfg.ResultTTLSec) * time.Second
	return tasks.NewRedisBroker(brokerClient), tasks.NewRedisResultBackend(resultClient, ttl), closeFn, nil
}
