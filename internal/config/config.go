// Package config resolves runtime settings: defaults, then an optional YAML
// file, then ADHERENCE_* environment variables. Command-line flags are
// applied last by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/adherence/internal/clock"
)

// Environment variables read by FromEnv.
const (
	EnvDB       = "ADHERENCE_DB"
	EnvPlan     = "ADHERENCE_PLAN"
	EnvTimezone = "ADHERENCE_TZ"
	EnvTick     = "ADHERENCE_TICK"
	EnvMockTime = "ADHERENCE_MOCK_TIME"
)

// DefaultDBPath is the database used when nothing else is configured.
const DefaultDBPath = "adherence.db"

// Config holds the configuration for the application.
type Config struct {
	DBPath   string `yaml:"db"`
	PlanPath string `yaml:"plan"`
	// Timezone is an IANA name; empty means the host's local zone.
	Timezone     string        `yaml:"timezone"`
	TickInterval time.Duration `yaml:"tick_interval"`
	// MockTime pins the clock to HH:MM on the real date.
	MockTime string `yaml:"mock_time"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:       DefaultDBPath,
		TickInterval: clock.DefaultTickInterval,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.FromEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overrides fields with any ADHERENCE_* variables that are set.
func (c *Config) FromEnv() error {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvPlan); v != "" {
		c.PlanPath = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvTick); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTick, err)
		}
		c.TickInterval = d
	}
	if v := os.Getenv(EnvMockTime); v != "" {
		c.MockTime = v
	}
	return nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", c.TickInterval))
	}
	if c.MockTime != "" {
		if _, _, err := clock.ParseHHMM(c.MockTime); err != nil {
			errs = append(errs, fmt.Errorf("mock time: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Clock builds the clock described by the configuration, with the mock time
// applied.
func (c Config) Clock(opts ...clock.Option) (*clock.Clock, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.New(append([]clock.Option{clock.WithLocation(loc)}, opts...)...)
	if c.MockTime != "" {
		if err := clk.SetOverride(c.MockTime); err != nil {
			return nil, fmt.Errorf("mock time: %w", err)
		}
	}
	return clk, nil
}
