package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/stratsim/market"
)

var ErrInvalid = errors.New("invalid config")

// Config represents the complete run configuration
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Symbols  []SymbolConfig `json:"symbols" yaml:"symbols"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
	Leverage float64 `json:"leverage" yaml:"leverage"`

	// MarginCallLevel is the margin level in percent at or below which a
	// margin call stops the run. 0 disables it.
	MarginCallLevel float64 `json:"margin_call_level,omitempty" yaml:"margin_call_level,omitempty"`
}

// SymbolConfig is a tracked symbol and its history. Zero contract fields
// default from the instrument catalog.
type SymbolConfig struct {
	market.SymbolInfo `yaml:",inline"`

	// Data is a bar file, optionally .xz or .gz compressed.
	Data string `json:"data" yaml:"data"`

	// Format of Data: "csv" (default) or "dukascopy".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// Timeframe, when set, resamples the loaded bars, e.g. "H1".
	Timeframe string `json:"timeframe,omitempty" yaml:"timeframe,omitempty"`
}

// StrategyConfig names a registered strategy and its parameter values
type StrategyConfig struct {
	Name   string             `json:"name" yaml:"name"`
	Symbol string             `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EventsFile string `json:"events_file,omitempty" yaml:"events_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// LoadFromFile loads configuration from a file (YAML, falling back to
// JSON), applies environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, else JSON)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// SymbolInfos returns the contract of every configured symbol with catalog
// defaults applied.
func (c *Config) SymbolInfos() []market.SymbolInfo {
	out := make([]market.SymbolInfo, len(c.Symbols))
	for i, s := range c.Symbols {
		out[i] = s.SymbolInfo.WithDefaults()
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if c.Account.Currency == "" {
		return invalid("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return invalid("account.balance must be positive")
	}
	if c.Account.Leverage <= 0 {
		return invalid("account.leverage must be positive")
	}
	// opening a position never drops the level below 100%
	if c.Account.MarginCallLevel < 0 || c.Account.MarginCallLevel >= 100 {
		return invalid("account.margin_call_level must be in [0, 100)")
	}

	if len(c.Symbols) == 0 {
		return invalid("at least one symbol is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for i, info := range c.SymbolInfos() {
		if info.Name == "" {
			return invalid("symbols[%d].name is required", i)
		}
		if seen[info.Name] {
			return invalid("duplicate symbol %s", info.Name)
		}
		seen[info.Name] = true
		if _, err := market.NewSymbol(info); err != nil {
			return invalid("symbols[%d]: %v", i, err)
		}
		if c.Symbols[i].Data == "" {
			return invalid("symbols[%d].data is required", i)
		}
		switch c.Symbols[i].Format {
		case "", "csv", "dukascopy":
		default:
			return invalid("symbols[%d].format must be 'csv' or 'dukascopy'", i)
		}
		if tf := c.Symbols[i].Timeframe; tf != "" {
			if _, err := market.ParseTimeframe(tf); err != nil {
				return invalid("symbols[%d]: %v", i, err)
			}
		}
	}

	if c.Strategy.Name == "" {
		return invalid("strategy.name is required")
	}
	if c.Strategy.Symbol != "" && !seen[c.Strategy.Symbol] {
		return invalid("strategy.symbol %s is not a configured symbol", c.Strategy.Symbol)
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EventsFile == "" || c.Journal.EquityFile == "" {
			return invalid("journal trades_file, events_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return invalid("journal db_path required for SQLite type")
		}
	default:
		return invalid("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return invalid("log.format must be 'text' or 'json'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:              "SIM-001",
			Currency:        "USD",
			Balance:         10000,
			Leverage:        100,
			MarginCallLevel: 50,
		},
		Symbols: []SymbolConfig{
			{SymbolInfo: market.SymbolInfo{Name: "EUR_USD"}, Data: "./data/EUR_USD_H1.csv"},
		},
		Strategy: StrategyConfig{
			Name:   "sma-cross",
			Params: map[string]float64{"fast": 10, "slow": 30},
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./stratsim.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
