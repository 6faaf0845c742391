package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratsim/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stratsim version "+version)
}

func TestStrategiesList(t *testing.T) {
	out, err := execute(t, "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "sma-cross")
	assert.Contains(t, out, "breakout")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Strategy: sma-cross")

	require.NoError(t, os.WriteFile(path, []byte("account:\n  currency: USD\n"), 0o644))
	_, err = execute(t, "config", "validate", "-f", path)
	assert.Error(t, err)
}

func TestBacktestAndJournal(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "eurusd.csv")
	csv := "time,open,high,low,close,volume\n" +
		"2024-04-01 00:00:00,1.1,1.1,1.1,1.1000,0\n" +
		"2024-04-01 01:00:00,1.1,1.1,1.1,1.1010,0\n" +
		"2024-04-01 02:00:00,1.1,1.1,1.1,1.1020,0\n"
	require.NoError(t, os.WriteFile(data, []byte(csv), 0o644))

	cfg := config.Default()
	cfg.Symbols[0].Data = data
	cfg.Journal.DBPath = filepath.Join(dir, "runs.db")
	cfgPath := filepath.Join(dir, "sim.yaml")
	require.NoError(t, cfg.SaveToFile(cfgPath))

	out, err := execute(t, "backtest", "-c", cfgPath, "-s", "open-once", "-p", "volume=0.2", "--run-id", "cli-run", "--progress")
	require.NoError(t, err)
	assert.Contains(t, out, "cli-run")
	assert.Contains(t, out, "open-once")

	out, err = execute(t, "journal", "runs", "-d", cfg.Journal.DBPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cli-run")

	out, err = execute(t, "journal", "trades", "cli-run", "-d", cfg.Journal.DBPath)
	require.NoError(t, err)
	assert.Contains(t, out, "LifecycleStop")

	_, err = execute(t, "backtest", "-c", cfgPath, "-p", "fast=abc")
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, applyOverrides(cfg, "ema-cross", map[string]string{"fast": "5"}))
	assert.Equal(t, "ema-cross", cfg.Strategy.Name)
	assert.Equal(t, map[string]float64{"fast": 5}, cfg.Strategy.Params)

	cfg = config.Default()
	require.NoError(t, applyOverrides(cfg, "", map[string]string{"slow": "40"}))
	assert.Equal(t, 10.0, cfg.Strategy.Params["fast"])
	assert.Equal(t, 40.0, cfg.Strategy.Params["slow"])

	assert.Error(t, applyOverrides(cfg, "", map[string]string{"slow": "x"}))
}
