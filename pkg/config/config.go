package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sameehj/locgate/pkg/platform"
	"gopkg.in/yaml.v3"
)

// Config defines runtime settings for locgate.
type Config struct {
	LogLevel  string         `yaml:"logLevel"`
	LogFormat string         `yaml:"logFormat"`
	Platform  PlatformConfig `yaml:"platform"`
}

// PlatformConfig controls where the API level comes from. APILevel, when set,
// pins the level and skips host detection.
type PlatformConfig struct {
	APILevel    string `yaml:"apiLevel"`
	EnvKey      string `yaml:"envKey"`
	GetpropPath string `yaml:"getpropPath"`
}

func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Platform: PlatformConfig{
			EnvKey: platform.DefaultEnvKey,
		},
	}
}

// LoadConfig loads configuration from a YAML file and environment overrides.
// A missing file at the default location is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if logLevel := os.Getenv("LOCGATE_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat := os.Getenv("LOCGATE_LOG_FORMAT"); logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if cfg.Platform.EnvKey == "" {
		cfg.Platform.EnvKey = platform.DefaultEnvKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid logFormat %q: want json or text", c.LogFormat)
	}
	if c.Platform.APILevel != "" {
		if _, err := platform.ParseAPILevel(c.Platform.APILevel); err != nil {
			return fmt.Errorf("platform.apiLevel: %w", err)
		}
	}
	return nil
}

// Source builds the platform source described by the config. The pinned level
// comes first; the configured environment variable and getprop follow.
func (c *Config) Source() platform.Source {
	if c.Platform.APILevel != "" {
		if level, err := platform.ParseAPILevel(c.Platform.APILevel); err == nil {
			return platform.Fixed(level)
		}
	}
	return platform.Chain(platform.Env(c.Platform.EnvKey), platform.Getprop(c.Platform.GetpropPath))
}

// DefaultConfigPath returns the default location for the CLI config file.
func DefaultConfigPath() string {
	if path := os.Getenv("LOCGATE_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".locgate", "config.yaml")
}
