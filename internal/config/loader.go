package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment variable overrides.
// PLANTRACK_GITHUB_TOKEN -> github.token, PLANTRACK_LOGGING_LEVEL -> logging.level.
const envPrefix = "PLANTRACK_"

// Load reads configuration from a YAML file, then overrides with environment
// variables, applies defaults, and validates.
//
// Precedence (highest to lowest):
//  1. PLANTRACK_* environment variables (GITHUB_TOKEN as a fallback for the token)
//  2. YAML config file (default ~/.config/plantrack/config.yaml)
//  3. Hardcoded defaults
//
// A missing config file is not an error; everything can come from the
// environment.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "plantrack", "config.yaml")
	}

	if content, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Environment overrides. PLANTRACK_GITHUB_TOKEN -> github.token:
	// strip prefix, lowercase, split on the first underscore into
	// section.field_name.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	// GITHUB_TOKEN is the conventional fallback for the credential.
	if !cfg.GitHub.Token.IsSet() {
		cfg.GitHub.Token = Secret(os.Getenv("GITHUB_TOKEN"))
	}

	// The release monitor searches the tracking repo unless told otherwise.
	if cfg.Downstream.Owner == "" && cfg.Downstream.Repo == "" {
		cfg.Downstream.Owner = cfg.GitHub.Owner
		cfg.Downstream.Repo = cfg.GitHub.Repo
	}

	if cfg.Git.Path == "" {
		cfg.Git.Path = "."
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Defaults.Priority == "" {
		cfg.Defaults.Priority = "medium"
	}
	if cfg.Defaults.Domain == "" {
		cfg.Defaults.Domain = "infrastructure"
	}
}
