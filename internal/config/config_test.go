package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.IP)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/prbot.db", cfg.Database.URL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Lock.URL)
	assert.Equal(t, defaultBotNickname, cfg.Bot.Nickname)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.Resync.Enabled)
	assert.Equal(t, defaultResyncSchedule, cfg.Resync.Schedule)
}

func TestServerAddress(t *testing.T) {
	cfg := ServerConfig{IP: "127.0.0.1", Port: 9090}
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
}

func TestGitHubConfigAuthModes(t *testing.T) {
	var cfg GitHubConfig
	assert.False(t, cfg.UsesPersonalToken())
	assert.False(t, cfg.UsesApp())

	cfg.PersonalToken = "ghp_token"
	assert.True(t, cfg.UsesPersonalToken())
	assert.False(t, cfg.UsesApp())

	cfg = GitHubConfig{AppClientID: "client-id", AppPrivateKey: "key"}
	assert.True(t, cfg.UsesApp())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PRBOT_TEST_VAR", "resolved")

	out := expandEnvVars("token: ${PRBOT_TEST_VAR}")
	assert.Equal(t, "token: resolved", out)
}

func TestExpandEnvVarsDefaultValue(t *testing.T) {
	out := expandEnvVars("token: ${PRBOT_MISSING_VAR:-fallback}")
	assert.Equal(t, "token: fallback", out)
}

func TestExpandEnvVarsUnsetNoDefault(t *testing.T) {
	out := expandEnvVars("token: ${PRBOT_MISSING_VAR}")
	assert.Equal(t, "token: ", out)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.IP, "unset fields keep the defaults")
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
