// Package vmtconfig provides engine-level configuration: the operational
// knobs a run is launched with (telemetry destination, status server,
// logging, safety caps), as distinct from a scenario document, which
// describes the simulation itself.
package vmtconfig

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Config is the complete engine-level configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Status      StatusConfig      `yaml:"status"`
	Safety      SafetyConfig      `yaml:"safety"`
}

// EnvironmentConfig controls logging verbosity.
type EnvironmentConfig struct {
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// TelemetryConfig controls the event-log sink.
type TelemetryConfig struct {
	Path       string `yaml:"path"`
	FlushEvery int    `yaml:"flush_every_ticks"`
}

// StatusConfig controls the optional read-only introspection server.
type StatusConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// SafetyConfig bounds a run independent of what the scenario declares.
type SafetyConfig struct {
	MaxTicks   int64  `yaml:"max_ticks"`
	SeedOverride *uint64 `yaml:"seed_override"`
}

// Load reads and parses an engine config file, rejecting unknown fields,
// expanding ${VAR} references, normalizing defaults, and validating the
// result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "vmt.yaml"
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is an operator-supplied config file
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Environment.LogLevel) == "" {
		c.Environment.LogLevel = "info"
	}
	if strings.TrimSpace(c.Telemetry.Path) == "" {
		c.Telemetry.Path = "vmt-events.jsonl"
	}
	if c.Telemetry.FlushEvery == 0 {
		c.Telemetry.FlushEvery = 1
	}
	if c.Status.Port == 0 {
		c.Status.Port = 9191
	}
	if c.Safety.MaxTicks == 0 {
		c.Safety.MaxTicks = 1_000_000
	}
}

// Validate checks structural consistency of the config.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Environment.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be one of: debug, info, warn, error")
	}

	if c.Telemetry.FlushEvery <= 0 {
		return fmt.Errorf("telemetry.flush_every_ticks must be > 0")
	}

	if c.Status.Enabled {
		if c.Status.Port <= 0 || c.Status.Port > 65535 {
			return fmt.Errorf("status.port must be between 1 and 65535")
		}
	}

	if c.Safety.MaxTicks <= 0 {
		return fmt.Errorf("safety.max_ticks must be > 0")
	}

	return nil
}
