// Package config loads deckviewer settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/meur/deckviewer/internal/deckurl"
	"github.com/meur/deckviewer/internal/storage"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Decks   DecksConfig   `toml:"decks"`
	URLs    URLConfig     `toml:"urls"`
	App     AppConfig     `toml:"app"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	StaticDir      string   `toml:"static_dir"` // Built frontend to serve at "/", empty disables
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	Path            string `toml:"path"`        // SQLite file, or ":memory:"
	QuotaBytes      int64  `toml:"quota_bytes"` // 0 disables the limit
	DeckListKey     string `toml:"deck_list_key"`
	ViewSettingsKey string `toml:"view_settings_key"`
}

// DecksConfig contains deck handling settings.
type DecksConfig struct {
	BulkDelay        string `toml:"bulk_delay"`        // Pause between bulk lines (e.g., "100ms")
	RejectDuplicates bool   `toml:"reject_duplicates"` // Skip codes that were already added
}

// URLConfig contains the deck page bases.
type URLConfig struct {
	DeckView    string `toml:"deck_view"`
	DeckConfirm string `toml:"deck_confirm"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	Debug bool `toml:"debug"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Storage: StorageConfig{
			Path:            "./deckviewer.db",
			QuotaBytes:      storage.DefaultQuotaBytes,
			DeckListKey:     storage.DefaultDeckListKey,
			ViewSettingsKey: storage.DefaultViewSettingsKey,
		},
		Decks: DecksConfig{
			BulkDelay:        "100ms",
			RejectDuplicates: false,
		},
		URLs: URLConfig{
			DeckView:    deckurl.DefaultViewBase,
			DeckConfirm: deckurl.DefaultConfirmBase,
		},
	}
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults. An empty path means "no file".
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage quota cannot be negative: %d", c.Storage.QuotaBytes)
	}
	if c.Storage.DeckListKey == "" || c.Storage.ViewSettingsKey == "" {
		return fmt.Errorf("storage keys are required")
	}
	if c.Storage.DeckListKey == c.Storage.ViewSettingsKey {
		return fmt.Errorf("deck list and view settings must use different keys (both %q)", c.Storage.DeckListKey)
	}
	d, err := time.ParseDuration(c.Decks.BulkDelay)
	if err != nil {
		return fmt.Errorf("invalid bulk delay %q: %w", c.Decks.BulkDelay, err)
	}
	if d < 0 {
		return fmt.Errorf("bulk delay cannot be negative: %s", d)
	}
	if c.URLs.DeckView == "" || c.URLs.DeckConfirm == "" {
		return fmt.Errorf("deck URL bases are required")
	}
	return nil
}

// GetBulkDelay returns the bulk delay as a duration.
func (c *Config) GetBulkDelay() time.Duration {
	d, err := time.ParseDuration(c.Decks.BulkDelay)
	if err != nil {
		return 0
	}
	return d
}

// URLBuilder returns the deck URL builder described by c.
func (c *Config) URLBuilder() deckurl.Builder {
	return deckurl.Builder{ViewBase: c.URLs.DeckView, ConfirmBase: c.URLs.DeckConfirm}
}

// StorageKeys returns the storage keys described by c.
func (c *Config) StorageKeys() storage.Keys {
	return storage.Keys{DeckList: c.Storage.DeckListKey, ViewSettings: c.Storage.ViewSettingsKey}
}
