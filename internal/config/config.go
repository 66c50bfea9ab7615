// Package config loads and exposes application configuration (TOML).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath       = "config.toml"
	DefaultListenAddr       = ":8443"
	DefaultStoragePath      = "data/ticketline.db"
	DefaultDispatchInterval = 20 * time.Second
	DefaultAffirmative      = "yes"
	DefaultBroadcastRate    = 25.0
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Storage   StorageConfig   `toml:"storage"`
	Dispatch  DispatchConfig  `toml:"dispatch"`
	Intake    IntakeConfig    `toml:"intake"`
	Broadcast BroadcastConfig `toml:"broadcast"`
	Admin     AdminConfig     `toml:"admin"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// TelegramConfig holds the bot credential and webhook parameters. When
// WebhookURL is empty the bot falls back to long polling.
type TelegramConfig struct {
	Token      string `toml:"token"`
	WebhookURL string `toml:"webhook_url"`
	ListenAddr string `toml:"listen_addr"`
}

// StorageConfig holds the SQLite database location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// DispatchConfig holds the assignment pass period.
type DispatchConfig struct {
	Interval duration `toml:"interval"`
}

// Period returns the dispatch period as a time.Duration.
func (c DispatchConfig) Period() time.Duration {
	return time.Duration(c.Interval)
}

// IntakeConfig holds dialogue tunables: the token the user sends to confirm
// filing another request.
type IntakeConfig struct {
	Affirmative string `toml:"affirmative"`
}

// BroadcastConfig holds the outbound fan-out rate in messages per second.
type BroadcastConfig struct {
	Rate float64 `toml:"rate"`
}

// AdminConfig holds the seed super-admin created on first store
// initialization.
type AdminConfig struct {
	UserID   int64  `toml:"user_id"`
	Username string `toml:"username"`
}

type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// Load reads and parses the TOML config file at path and applies default
// values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telegram: TelegramConfig{
			ListenAddr: DefaultListenAddr,
		},
		Storage: StorageConfig{
			Path: DefaultStoragePath,
		},
		Dispatch: DispatchConfig{
			Interval: duration(DefaultDispatchInterval),
		},
		Intake: IntakeConfig{
			Affirmative: DefaultAffirmative,
		},
		Broadcast: BroadcastConfig{
			Rate: DefaultBroadcastRate,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the fields without which the process must refuse to start.
func (c Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is required")
	}
	if c.Admin.UserID == 0 {
		return errors.New("seed admin user_id is required")
	}
	if c.Dispatch.Period() <= 0 {
		return errors.New("dispatch interval must be positive")
	}
	return nil
}
