// Package config loads and validates the application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tradeguard/engine"
)

// Config is the complete application configuration.
type Config struct {
	Engine  engine.Config `json:"engine" yaml:"engine"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// ProfilesFile optionally points at a YAML file overriding the
	// built-in strategy profiles.
	ProfilesFile string `json:"profiles_file,omitempty" yaml:"profiles_file,omitempty"`

	// Watch lists the asset/strategy pairs the run loop evaluates.
	Watch []WatchConfig `json:"watch" yaml:"watch"`
}

// WatchConfig is one asset/strategy pair under evaluation.
type WatchConfig struct {
	Asset    string `json:"asset" yaml:"asset"`
	Strategy string `json:"strategy" yaml:"strategy"`
}

// JournalConfig selects where decisions and exits are persisted.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DecisionsFile string `json:"decisions_file,omitempty" yaml:"decisions_file,omitempty"`
	ExitsFile     string `json:"exits_file,omitempty" yaml:"exits_file,omitempty"`
}

// LoggingConfig tunes the log output.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // trace..panic, default info
	Pretty bool   `json:"pretty" yaml:"pretty"` // console writer instead of JSON
}

// Default returns a runnable configuration: neutral mode, sqlite
// journal, one forex pair on the day profile.
func Default() *Config {
	return &Config{
		Engine: engine.DefaultConfig(),
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "tradeguard.db",
		},
		Logging: LoggingConfig{Level: "info", Pretty: true},
		Watch: []WatchConfig{
			{Asset: "EURUSD", Strategy: "day"},
		},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file. Missing
// fields keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
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

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path is required for the sqlite journal")
		}
	case "csv":
		if c.Journal.DecisionsFile == "" || c.Journal.ExitsFile == "" {
			return fmt.Errorf("journal.decisions_file and journal.exits_file are required for the csv journal")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be sqlite, csv or none, got %q", c.Journal.Type)
	}

	if c.Engine.Lookback < 0 {
		return fmt.Errorf("engine.lookback must not be negative")
	}
	if c.Engine.Volume < 0 {
		return fmt.Errorf("engine.volume must not be negative")
	}

	for i, w := range c.Watch {
		if w.Asset == "" {
			return fmt.Errorf("watch[%d]: asset is required", i)
		}
		if w.Strategy == "" {
			return fmt.Errorf("watch[%d]: strategy is required", i)
		}
	}
	return nil
}
