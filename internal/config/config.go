// Package config provides YAML configuration loading for the rnode client.
// All settings have working defaults, so the config file is optional; values
// can additionally be overridden through RNODE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no explicit path is given.
// A missing file at this path is not an error.
const DefaultPath = "rnode.yaml"

// Config holds the connection parameters for the node and the web UI.
type Config struct {
	Host    string        `yaml:"host"`              // Node host (default 127.0.0.1)
	Port    int           `yaml:"port"`              // Node RPC port (default 50000)
	WebPort int           `yaml:"web_port"`          // Diagnostics UI port (default 8888)
	Timeout time.Duration `yaml:"timeout,omitempty"` // Per-call RPC timeout; 0 waits indefinitely
}

// Default returns the built-in configuration: a node on 127.0.0.1:50000 and
// the web UI on 8888, with no RPC timeout.
func Default() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    50000,
		WebPort: 8888,
		Timeout: 0,
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", c.Port)
	}
	if c.WebPort <= 0 || c.WebPort > 65535 {
		return fmt.Errorf("web_port must be in 1..65535, got %d", c.WebPort)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	return nil
}

// Load reads a YAML configuration file on top of the defaults.
//
// When path is empty, DefaultPath is tried and a missing file silently
// yields the defaults. An explicitly given path must exist. Environment
// variables in the file body are expanded with ${VAR} syntax before
// parsing.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides the configuration from RNODE_HOST, RNODE_PORT and
// RNODE_WEB_PORT. Unparsable numeric values are reported as errors rather
// than ignored.
func (c *Config) ApplyEnv() error {
	if host := os.Getenv("RNODE_HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv("RNODE_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("RNODE_PORT: %w", err)
		}
		c.Port = n
	}
	if port := os.Getenv("RNODE_WEB_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("RNODE_WEB_PORT: %w", err)
		}
		c.WebPort = n
	}
	return c.Validate()
}
