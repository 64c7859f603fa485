package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
github:
  owner: fyrsmithlabs
  repo: planning
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fyrsmithlabs", cfg.GitHub.Owner)
	assert.Equal(t, "planning", cfg.GitHub.Repo)
	// Downstream falls back to the tracking repo.
	assert.Equal(t, "fyrsmithlabs", cfg.Downstream.Owner)
	assert.Equal(t, "planning", cfg.Downstream.Repo)
	assert.Equal(t, ".", cfg.Git.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "medium", cfg.Defaults.Priority)
	assert.Equal(t, "infrastructure", cfg.Defaults.Domain)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
github:
  owner: fyrsmithlabs
  repo: planning
logging:
  level: debug
`)
	t.Setenv("PLANTRACK_LOGGING_LEVEL", "warn")
	t.Setenv("PLANTRACK_GITHUB_TOKEN", "ghp_secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "ghp_secret", cfg.GitHub.Token.Value())
}

func TestLoad_GithubTokenFallback(t *testing.T) {
	t.Setenv("PLANTRACK_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "ghp_fallback")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ghp_fallback", cfg.GitHub.Token.Value())
}

func TestLoad_InvalidFormatRejected(t *testing.T) {
	path := writeConfig(t, `
logging:
  format: xml
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging format")
}

func TestLoad_OwnerWithoutRepoRejected(t *testing.T) {
	path := writeConfig(t, `
github:
  owner: fyrsmithlabs
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner and repo")
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("ghp_supersecret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "Secret([REDACTED])", s.GoString())
	assert.Equal(t, "ghp_supersecret", s.Value())
	assert.True(t, s.IsSet())

	out := fmt.Sprintf("token=%s %v %#v", s, s, s)
	assert.NotContains(t, out, "supersecret")

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(b))
}

func TestSecret_Empty(t *testing.T) {
	var s Secret
	assert.False(t, s.IsSet())
	assert.Equal(t, "", s.String())

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(b))
}
