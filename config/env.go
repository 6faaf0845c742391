package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides applied by ApplyEnv.
const (
	EnvBalance   = "STRATSIM_BALANCE"
	EnvJournalDB = "STRATSIM_JOURNAL_DB"
	EnvLogLevel  = "STRATSIM_LOG_LEVEL"
	EnvLogFormat = "STRATSIM_LOG_FORMAT"
)

// LoadEnv loads .env style files into the process environment. Variables
// already set win. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s file: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from STRATSIM_* variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvBalance); v != "" {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBalance, err)
		}
		c.Account.Balance = b
	}
	if v := os.Getenv(EnvJournalDB); v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	return nil
}
