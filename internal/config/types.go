// Package config provides configuration loading for plantrack.
package config

import (
	"encoding/json"
	"fmt"
)

// Config is the root configuration for the plantrack CLI.
type Config struct {
	GitHub     GitHubConfig     `koanf:"github"`
	Downstream DownstreamConfig `koanf:"downstream"`
	Git        GitConfig        `koanf:"git"`
	Logging    LoggingConfig    `koanf:"logging"`
	Defaults   DefaultsConfig   `koanf:"defaults"`
}

// GitHubConfig identifies the tracking repository and carries credentials.
type GitHubConfig struct {
	Owner string `koanf:"owner"`
	Repo  string `koanf:"repo"`
	Token Secret `koanf:"token"`
}

// DownstreamConfig identifies the repository the release monitor searches
// for pull requests. Defaults to the tracking repository when unset.
type DownstreamConfig struct {
	Owner string `koanf:"owner"`
	Repo  string `koanf:"repo"`
}

// GitConfig locates the local working copy used for branch creation.
type GitConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DefaultsConfig carries fallback label values for plan creation.
type DefaultsConfig struct {
	Priority string `koanf:"priority"`
	Domain   string `koanf:"domain"`
}

// Validate checks the configuration for structural errors. Presence of
// credentials is checked later, per command, so read-only invocations
// against a public repository still work.
func (c *Config) Validate() error {
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if (c.GitHub.Owner == "") != (c.GitHub.Repo == "") {
		return fmt.Errorf("github owner and repo must be set together")
	}
	if (c.Downstream.Owner == "") != (c.Downstream.Repo == "") {
		return fmt.Errorf("downstream owner and repo must be set together")
	}
	return nil
}

// Secret is a string that redacts itself in all output paths. Use Value()
// to access the underlying credential.
type Secret string

// String implements fmt.Stringer. Always returns redacted value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "Secret([REDACTED])"
}

// Value returns the actual secret value. Use sparingly.
func (s Secret) Value() string {
	return string(s)
}

// IsSet returns true if the secret has a non-empty value.
func (s Secret) IsSet() bool {
	return s != ""
}

// MarshalJSON implements json.Marshaler. Always returns redacted value.
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("[REDACTED]")
}

// MarshalText implements encoding.TextMarshaler. Always returns redacted value.
func (s Secret) MarshalText() ([]byte, error) {
	if s == "" {
		return []byte(""), nil
	}
	return []byte("[REDACTED]"), nil
}
