package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromPath_WithValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.yaml")

	configContent := `
discover:
  mode: strict
run:
  timeout_seconds: 30
github:
  repo: acme/widgets
  labels: ["automated"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := LoadConfigFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "strict", cfg.Discover.Mode)
	assert.Equal(t, 30, cfg.Run.TimeoutSeconds)
	assert.Equal(t, "acme/widgets", cfg.GitHub.Repo)
	assert.Equal(t, []string{"automated"}, cfg.GitHub.Labels)
}

func TestLoadConfigFromPath_NonExistentFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := LoadConfigFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "safe", cfg.Discover.Mode)
	assert.Zero(t, cfg.Run.TimeoutSeconds)
}

func TestLoadConfigFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte("discover: [invalid\n"), 0644))

	_, err := LoadConfigFromPath(configPath)
	assert.Error(t, err)
}

func TestLoadConfigWithFile_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "my-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("discover:\n  mode: strict\n"), 0644))

	cfg, err := LoadConfigWithFile(tmpDir, configPath)
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.Discover.Mode)
}

func TestLoadConfigWithFile_GlobalFallback(t *testing.T) {
	globalDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", globalDir)
	globalPath := filepath.Join(globalDir, "warifuri", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(globalPath), 0755))
	require.NoError(t, os.WriteFile(globalPath, []byte("discover:\n  mode: strict\n"), 0644))

	cfg, err := LoadConfigWithFile(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.Discover.Mode)
}

func TestLoadConfigWithFile_NoConfigDefaults(t *testing.T) {
	globalDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", globalDir)

	cfg, err := LoadConfigWithFile(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "safe", cfg.Discover.Mode)
}

func TestLoadConfigWithFile_LocalFileWins(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "warifuri.yaml"), []byte("discover:\n  mode: strict\n"), 0644))

	cfg, err := LoadConfigWithFile(workDir, "")
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.Discover.Mode)
}

func TestRunConfig_Timeout(t *testing.T) {
	assert.Zero(t, RunConfig{}.Timeout())
	assert.Equal(t, 0, int(RunConfig{TimeoutSeconds: 0}.Timeout()))
	assert.True(t, RunConfig{TimeoutSeconds: 5}.Timeout() > 0)
}
