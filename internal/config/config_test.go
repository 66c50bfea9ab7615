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
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[telegram]
token = "123:abc"

[admin]
user_id = 42
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultListenAddr, cfg.Telegram.ListenAddr)
	assert.Equal(t, DefaultStoragePath, cfg.Storage.Path)
	assert.Equal(t, DefaultDispatchInterval, cfg.Dispatch.Period())
	assert.Equal(t, DefaultAffirmative, cfg.Intake.Affirmative)
	assert.Equal(t, DefaultBroadcastRate, cfg.Broadcast.Rate)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[telegram]
token = "123:abc"
webhook_url = "https://bot.example.com"
listen_addr = ":9000"

[storage]
path = "/var/lib/bot/bot.db"

[dispatch]
interval = "45s"

[intake]
affirmative = "sure"

[broadcast]
rate = 5.0

[admin]
user_id = 42
username = "boss"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://bot.example.com", cfg.Telegram.WebhookURL)
	assert.Equal(t, ":9000", cfg.Telegram.ListenAddr)
	assert.Equal(t, "/var/lib/bot/bot.db", cfg.Storage.Path)
	assert.Equal(t, 45*time.Second, cfg.Dispatch.Period())
	assert.Equal(t, "sure", cfg.Intake.Affirmative)
	assert.Equal(t, 5.0, cfg.Broadcast.Rate)
	assert.Equal(t, "boss", cfg.Admin.Username)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `
[telegram]
token = "123:abc"

[dispatch]
interval = "soon"

[admin]
user_id = 42
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Dispatch: DispatchConfig{Interval: duration(DefaultDispatchInterval)},
		Admin:    AdminConfig{UserID: 42},
	}
	assert.NoError(t, base.Validate())

	noToken := base
	noToken.Telegram.Token = ""
	assert.Error(t, noToken.Validate())

	noAdmin := base
	noAdmin.Admin.UserID = 0
	assert.Error(t, noAdmin.Validate())

	zeroInterval := base
	zeroInterval.Dispatch.Interval = 0
	assert.Error(t, zeroInterval.Validate())
}
