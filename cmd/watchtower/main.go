package main

import (
	"fmt"
	"os"

	"watchtower/internal/config"
	"watchtower/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "watchtower",
	Short:         "cluster and node inventory service",
	Long:          "Watchtower keeps an inventory of clusters and the nodes that belong to them, and runs background tasks against them",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "INI config file; environment variables take precedence")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the INI file given by --config, or the environment alone
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromINI(path)
	}
	return config.Load()
}

// setup loads configuration and builds the process logger
func setup(cmd *cobra.Command) (*config.Config, *logrus.Entry, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logrus.NewEntry(logger).WithField("command", cmd.Name()), nil
}
