package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from a directory with no config.yaml so only env defaults apply
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.RunTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, int64(16<<20), cfg.Limits.MaxUploadBytes)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CSVHEALTH_SERVER_PORT", "9090")
	t.Setenv("CSVHEALTH_LOGGING_LEVEL", "debug")
	t.Setenv("CSVHEALTH_LIMITS_MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, int64(1024), cfg.Limits.MaxUploadBytes)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CSVHEALTH_SERVER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestValidate_ForcesJSONFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestMergeConfigs_EnvWins(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 7000
	fileCfg.Paths.DataDir = "/srv/data"

	envCfg := Config{}
	envCfg.Server.Port = 9000

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 9000, merged.Server.Port)
	assert.Equal(t, "/srv/data", merged.Paths.DataDir)
	assert.Equal(t, fileCfg.Server.ReadTimeout, merged.Server.ReadTimeout)
}

func TestRunDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/srv/csvhealth"

	assert.Equal(t, filepath.Join("/srv/csvhealth", "runs"), cfg.RunsDir())
	assert.Equal(t, filepath.Join("/srv/csvhealth", "runs", "abc-123"), cfg.RunDir("abc-123"))
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.LogsDir = filepath.Join(dir, "logs")

	require.NoError(t, cfg.EnsureDirectories())

	assert.DirExists(t, cfg.DataDir())
	assert.DirExists(t, cfg.RunsDir())
	assert.DirExists(t, cfg.LogsDir())
}
