package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// AI provider identifiers
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Config holds all application configuration
type Config struct {
	Version int          `toml:"version"`
	Google  GoogleConfig `toml:"google"`
	AI      AIConfig     `toml:"ai"`
	Sync    SyncConfig   `toml:"sync"`
	Digest  DigestConfig `toml:"digest"`
	Email   EmailConfig  `toml:"email"`
}

// GoogleConfig holds the OAuth client used for Gmail access
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type AIConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

type SyncConfig struct {
	// BatchSize is how many users are synced concurrently per batch.
	BatchSize int `toml:"batch_size"`
	// LookbackDays bounds the notification-email fetch window.
	LookbackDays int `toml:"lookback_days"`
	// IntervalHours is how often the scheduled sync pass runs.
	IntervalHours int `toml:"interval_hours"`
	// ClassifyImportance toggles AI importance classification during sync.
	ClassifyImportance bool `toml:"classify_importance"`
}

type DigestConfig struct {
	SendTime string `toml:"send_time"` // "07:30"
	Timezone string `toml:"timezone"`
	MaxItems int    `toml:"max_items"`
}

type EmailConfig struct {
	Provider string `toml:"provider"`
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	SMTPUser string `toml:"smtp_user"`
	SMTPPass string `toml:"smtp_pass"`
	FromAddr string `toml:"from_address"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		AI: AIConfig{
			Provider: ProviderGemini,
			Model:    "gemini-2.0-flash",
		},
		Sync: SyncConfig{
			BatchSize:          5,
			LookbackDays:       7,
			IntervalHours:      6,
			ClassifyImportance: true,
		},
		Digest: DigestConfig{
			SendTime: "07:30",
			Timezone: "Asia/Taipei",
			MaxItems: 20,
		},
		Email: EmailConfig{
			Provider: "smtp",
			SMTPPort: 587,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "spark"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the platform-appropriate cache directory
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "spark"), nil
}

// DataDir returns the directory holding the sqlite database
func DataDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// DBPath returns the full path to the sqlite database file
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "spark.db"), nil
}

// Load reads config from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
