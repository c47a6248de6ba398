// ABOUTME: Tests for config loading, env expansion, defaults, and validation
// ABOUTME: Uses temp files per test case

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: abc123
bot:
  admin_marker: "!!"
  grace_period: 30s
  recent_window: 100
database:
  path: /tmp/cleaner.db
server:
  http_addr: ":8080"
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.Discord.Token)
	assert.Equal(t, "!!", cfg.Bot.AdminMarker)
	assert.Equal(t, 30*time.Second, cfg.Bot.GracePeriod)
	assert.Equal(t, 100, cfg.Bot.RecentWindow)
	assert.Equal(t, "/tmp/cleaner.db", cfg.Database.Path)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("CLEANER_TEST_TOKEN", "secret-token")

	path := writeConfig(t, `
discord:
  token: ${CLEANER_TEST_TOKEN}
database:
  path: /tmp/cleaner.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Discord.Token)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: abc
database:
  path: /tmp/cleaner.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminMarker, cfg.Bot.AdminMarker)
	assert.Zero(t, cfg.Bot.GracePeriod)
}

func TestLoad_MissingToken(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/cleaner.db
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "discord.token is required")
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: abc
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "database.path is required")
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: abc
bot:
  grace_period: twenty
database:
  path: /tmp/cleaner.db
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "grace_period")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
