// Package config loads engine configuration from a TOML file with
// environment variable expansion. Deployment behavior (notably the degraded
// checkpointer mode) branches on the configured Environment.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Environment identifies the deployment mode. Production trades durability
// for availability when the checkpoint backend is unreachable; every other
// environment fails fast.
type Environment string

const (
	// EnvironmentDevelopment is the local development mode.
	EnvironmentDevelopment Environment = "development"
	// EnvironmentStaging is the pre-production mode.
	EnvironmentStaging Environment = "staging"
	// EnvironmentProduction is the production mode.
	EnvironmentProduction Environment = "production"
)

// ParseEnvironment validates and normalizes an environment string. An empty
// string defaults to development.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case "":
		return EnvironmentDevelopment, nil
	case EnvironmentDevelopment, EnvironmentStaging, EnvironmentProduction:
		return Environment(s), nil
	default:
		return "", fmt.Errorf("unknown environment %q", s)
	}
}

// Config represents the complete engine configuration.
type Config struct {
	Environment string           `toml:"environment"`
	Model       ModelConfig      `toml:"model"`
	Checkpoint  CheckpointConfig `toml:"checkpoint"`
	Engine      EngineConfig     `toml:"engine"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ModelConfig holds model provider configuration.
type ModelConfig struct {
	Provider    string  `toml:"provider"` // "openai", "anthropic", "mock"
	Name        string  `toml:"name"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int64   `toml:"max_tokens"`
}

// CheckpointConfig holds checkpoint store configuration.
type CheckpointConfig struct {
	Backend string `toml:"backend"` // "sqlite" or "memory"
	Path    string `toml:"path"`    // SQLite database path
}

// EngineConfig holds orchestration limits.
type EngineConfig struct {
	MaxToolHops  int `toml:"max_tool_hops"`
	HistoryLimit int `toml:"history_limit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a development configuration with in-memory persistence.
func Default() *Config {
	return &Config{
		Environment: string(EnvironmentDevelopment),
		Model:       ModelConfig{Provider: "openai", Temperature: 0.7, MaxTokens: 4096},
		Checkpoint:  CheckpointConfig{Backend: "memory"},
		Engine:      EngineConfig{MaxToolHops: 8, HistoryLimit: 50},
		Logging:     LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded
// before parsing. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if _, err := ParseEnvironment(c.Environment); err != nil {
		return err
	}
	switch c.Checkpoint.Backend {
	case "", "memory":
	case "sqlite":
		if c.Checkpoint.Path == "" {
			return fmt.Errorf("checkpoint.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown checkpoint backend %q", c.Checkpoint.Backend)
	}
	if c.Engine.MaxToolHops < 0 {
		return fmt.Errorf("engine.max_tool_hops must not be negative")
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR_NAME} references with their environment
// values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
