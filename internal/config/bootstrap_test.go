package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBootstrapMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadBootstrap(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBootstrapConfig().Server.Port, cfg.Server.Port)
}

func TestLoadBootstrapFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootstrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bot:\n  nickname: prbot-staging\n"), 0644))

	cfg, err := LoadBootstrap(path)
	require.NoError(t, err)
	assert.Equal(t, "prbot-staging", cfg.Bot.Nickname)
}

func TestLoadBootstrapEnvOverrides(t *testing.T) {
	t.Setenv("PRBOT_SERVER_IP", "10.0.0.1")
	t.Setenv("PRBOT_SERVER_PORT", "9001")
	t.Setenv("PRBOT_BOT_NICKNAME", "envbot")

	cfg, err := LoadBootstrap(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", cfg.Server.IP)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "envbot", cfg.Bot.Nickname)
}

func TestBootstrapConfigToConfig(t *testing.T) {
	bootstrap := DefaultBootstrapConfig()
	bootstrap.Bot.Nickname = "prbot"

	cfg := bootstrap.ToConfig()
	assert.Equal(t, bootstrap.Server, cfg.Server)
	assert.Equal(t, bootstrap.Database, cfg.Database)
	assert.Equal(t, "prbot", cfg.Bot.Nickname)
}

func TestBootstrapExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	assert.False(t, BootstrapExists(path))

	require.NoError(t, CreateDefaultBootstrap(path))
	assert.True(t, BootstrapExists(path))
}

func TestWriteAndReloadBootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	cfg := DefaultBootstrapConfig()
	cfg.Bot.Nickname = "written-bot"

	require.NoError(t, WriteBootstrap(path, cfg))

	reloaded, err := LoadBootstrap(path)
	require.NoError(t, err)
	assert.Equal(t, "written-bot", reloaded.Bot.Nickname)
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("true"))
	assert.True(t, parseBool("1"))
	assert.True(t, parseBool("YES"))
	assert.False(t, parseBool("false"))
	assert.False(t, parseBool(""))
}
