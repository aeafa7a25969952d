package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/observe"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthops",
		Short:         "Health-check orchestration engine",
		Long:          "healthops runs a set of independent health probes, aggregates them into one system status, and raises deduplicated alerts for critical conditions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $HEALTHOPS_CONFIG, then ~/.healthops/config.yaml)")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newAlertsCmd())
	return root
}

// loadEnv loads the configuration and builds the logger.
func loadEnv() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := observe.NewLogger(cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
