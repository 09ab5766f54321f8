// pkg/config/loader_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp XDG dirs)
// PURPOSE: Test configuration layering: defaults, user file, dotenv and env

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jtele2/csync/pkg/config"
	"github.com/jtele2/csync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(config.EnvSyncBranch, "")
	t.Setenv(config.EnvConfigFile, "")
	return filepath.Join(dir, "csync")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Sync.Branch)
	assert.Equal(t, "origin", cfg.Sync.Remote)
	assert.Equal(t, 10, cfg.Backup.Keep)
	assert.Equal(t, []string{".git", ".sync", "node_modules", ".DS_Store"}, cfg.Backup.Exclude)
	assert.Equal(t, []string{".local"}, cfg.Backup.ExcludeSuffixes)
	require.Len(t, cfg.Links, 2)
	assert.Equal(t, config.LinkConfig{Source: "zshrc", Target: ".zshrc"}, cfg.Links[0])
	assert.Empty(t, cfg.Metrics.Textfile)
}

func TestLoad_UserFileOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[sync]
branch = "dotfiles"

[backup]
keep = 3

[[links]]
source = "gitconfig"
target = ".gitconfig"
`), 0644))

	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "dotfiles", cfg.Sync.Branch)
	assert.Equal(t, "origin", cfg.Sync.Remote, "unset keys keep their defaults")
	assert.Equal(t, 3, cfg.Backup.Keep)
	assert.Equal(t, []config.LinkConfig{{Source: "gitconfig", Target: ".gitconfig"}}, cfg.Links)
}

func TestLoad_EnvironmentPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv("CSYNC_SYNC__REMOTE_URL", "https://example.com/configs.git")
	t.Setenv("CSYNC_CONFIGS_DIR", "/srv/configs")
	t.Setenv(config.EnvSyncBranch, "work")

	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/configs.git", cfg.Sync.RemoteURL)
	assert.Equal(t, "/srv/configs", cfg.Paths.ConfigsDir)
	assert.Equal(t, "work", cfg.Sync.Branch)
}

func TestLoad_DotenvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env"),
		[]byte("CSYNC_METRICS__TEXTFILE=/tmp/from-dotenv.prom\nSYNC_BRANCH=from-dotenv\n"), 0644))
	t.Setenv(config.EnvSyncBranch, "from-shell")
	t.Setenv("CSYNC_METRICS__TEXTFILE", "")
	require.NoError(t, os.Unsetenv("CSYNC_METRICS__TEXTFILE"))

	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-dotenv.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "from-shell", cfg.Sync.Branch)
}

func TestLoad_InvalidKeep(t *testing.T) {
	isolate(t)
	t.Setenv("CSYNC_BACKUP__KEEP", "0")

	_, err := config.Load(config.LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestMarshal_RoundTripsThroughFile(t *testing.T) {
	dir := isolate(t)

	data, err := config.Default().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[links]]")

	path := filepath.Join(dir, "generated.toml")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := config.Load(config.LoadOptions{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
