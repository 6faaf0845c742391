package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratsim/config"
)

var rootCmd = &cobra.Command{
	Use:   "stratsim",
	Short: "A trade execution and strategy lifecycle simulator",
	Long: `Stratsim replays historical bars through a simulated trading account.

It provides tools for:
  - Backtesting registered strategies against CSV history
  - Margin, commission and slippage aware order execution
  - Trade journals in SQLite or CSV
  - Generating and validating run configurations`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	logLevel  string
	logFormat string
	envFiles  []string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text or json)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env)")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(envFiles...); err != nil {
		return err
	}
	return configureLogging(config.LogConfig{Level: logLevel, Format: logFormat})
}

// configureLogging applies lc to the standard logger. Empty fields keep
// the current setting.
func configureLogging(lc config.LogConfig) error {
	if lc.Level != "" {
		lvl, err := logrus.ParseLevel(lc.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		logrus.SetLevel(lvl)
	}
	switch lc.Format {
	case "":
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("log format %q: want text or json", lc.Format)
	}
	return nil
}
