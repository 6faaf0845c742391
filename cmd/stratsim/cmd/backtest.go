package cmd

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratsim/backtest"
	"github.com/rustyeddy/stratsim/config"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay history through a strategy",
	Long: `Run a strategy against the bar history named in a configuration file.

Flags override the strategy and parameters of the file.

Examples:
  stratsim backtest -c simulation.yaml
  stratsim backtest -c simulation.yaml -s ema-cross -p fast=12 -p slow=26 --report run.org`,
	RunE: runBacktest,
}

var (
	backtestConfig   string
	backtestStrategy string
	backtestParams   map[string]string
	backtestReport   string
	backtestRunID    string
	backtestProgress bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&backtestConfig, "config", "c", "", "path to config file (required)")
	backtestCmd.Flags().StringVarP(&backtestStrategy, "strategy", "s", "", "strategy name (overrides config)")
	backtestCmd.Flags().StringToStringVarP(&backtestParams, "param", "p", nil, "strategy parameter name=value (repeatable)")
	backtestCmd.Flags().StringVar(&backtestReport, "report", "", "write an org-mode report to this path")
	backtestCmd.Flags().StringVar(&backtestRunID, "run-id", "", "run id (default: new ULID)")
	backtestCmd.Flags().BoolVar(&backtestProgress, "progress", false, "show a progress bar on stderr")
	backtestCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(backtestConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyOverrides(cfg, backtestStrategy, backtestParams); err != nil {
		return err
	}
	if err := configureLogging(cfg.Log); err != nil {
		return err
	}
	// flags win over the file
	if err := configureLogging(config.LogConfig{Level: logLevel, Format: logFormat}); err != nil {
		return err
	}

	opts := backtest.Options{
		RunID:      backtestRunID,
		ReportPath: backtestReport,
		Logger:     logrus.StandardLogger(),
	}
	var bar *progressbar.ProgressBar
	if backtestProgress {
		opts.Progress = func(done, total int) {
			if bar == nil {
				bar = newProgressBar(cmd, total)
			}
			_ = bar.Set(done)
		}
	}

	out, err := backtest.Run(cmd.Context(), cfg, opts)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	w := cmd.OutOrStdout()
	out.Summary.WriteTable(w)
	if backtestReport != "" {
		fmt.Fprintf(w, "Org Report: %s\n", backtestReport)
	}
	if out.Err != nil {
		return fmt.Errorf("strategy failed: %w", out.Err)
	}
	return nil
}

func applyOverrides(cfg *config.Config, name string, params map[string]string) error {
	if name != "" && name != cfg.Strategy.Name {
		cfg.Strategy.Name = name
		cfg.Strategy.Params = nil
	}
	if len(params) == 0 {
		return nil
	}
	if cfg.Strategy.Params == nil {
		cfg.Strategy.Params = make(map[string]float64, len(params))
	}
	for k, v := range params {
		var f float64
		if _, err := fmt.Sscan(v, &f); err != nil {
			return fmt.Errorf("param %s=%q: not a number", k, v)
		}
		cfg.Strategy.Params[k] = f
	}
	return nil
}

func newProgressBar(cmd *cobra.Command, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Replaying bars..."),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
