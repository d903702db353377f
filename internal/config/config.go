// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/todoflux/internal/engine"
)

// Default values.
const (
	DefaultFormat      = "text"
	DefaultIDStrategy  = string(engine.StrategyUUIDv4)
	DefaultCounterSeed = engine.DefaultCounterPrefix
)

// Config holds the CLI configuration.
type Config struct {
	// Output
	Format  string `toml:"format" json:"format"`   // text or json
	Verbose bool   `toml:"verbose" json:"verbose"` // debug logging

	// Item ids
	IDs IDConfig `toml:"ids" json:"ids"`
}

// IDConfig selects the id generator.
type IDConfig struct {
	Strategy string `toml:"strategy" json:"strategy"` // uuid4, uuid7, counter
	Prefix   string `toml:"prefix" json:"prefix"`     // counter only
}

// Default returns a config with default values.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Format = DefaultFormat
	cfg.Verbose = false
	cfg.IDs.Strategy = DefaultIDStrategy
	cfg.IDs.Prefix = DefaultCounterSeed
}

// Load loads configuration in priority order:
// 1. Defaults
// 2. Config file (TOML), if path is set or todo.toml exists in the
//    current directory
//
// CLI flags are applied on top by the caller. There is no environment
// variable layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for a config file in the current directory.
func findConfigFile() string {
	names := []string{"todo.toml", ".todo.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// loadConfigFile loads TOML config from the given file.
// Unknown keys are an error so typos do not silently fall back to defaults.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be text or json", c.Format)
	}
	if _, err := engine.NewGenerator(engine.Strategy(c.IDs.Strategy), c.IDs.Prefix); err != nil {
		return fmt.Errorf("invalid ids config: %w", err)
	}
	return nil
}

// Generator builds the configured id generator.
func (c *Config) Generator() (engine.IDGenerator, error) {
	return engine.NewGenerator(engine.Strategy(c.IDs.Strategy), c.IDs.Prefix)
}
