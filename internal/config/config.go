package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/calculator/internal/logging"
)

// Config is the service configuration shared by the serve and mcp commands.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`
	// MetricsPath is where the HTTP API mounts Prometheus metrics. Empty
	// disables the metrics endpoint.
	MetricsPath string `yaml:"metrics_path" json:"metrics_path"`
	// MaxSessions limits concurrent calculator sessions. Zero means no limit.
	MaxSessions int `yaml:"max_sessions" json:"max_sessions"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel:    "info",
		Listen:      ":8080",
		MetricsPath: "/metrics",
		MaxSessions: 1024,
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults. A
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Listen == "" {
		return errors.New("listen address is empty")
	}
	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics path %q must start with /", c.MetricsPath)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("max sessions (%d) must not be negative", c.MaxSessions)
	}
	return nil
}
