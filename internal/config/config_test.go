package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/deckviewer/internal/deckurl"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100*time.Millisecond, cfg.GetBulkDelay())
	assert.False(t, cfg.Decks.RejectDuplicates)
	assert.Equal(t, deckurl.Default(), cfg.URLBuilder())
	assert.Equal(t, "pokemonTcgDeckList", cfg.StorageKeys().DeckList)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deckviewer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[decks]
bulk_delay = "0s"
reject_duplicates = true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Decks.RejectDuplicates)
	assert.Equal(t, time.Duration(0), cfg.GetBulkDelay())
	assert.Equal(t, "./deckviewer.db", cfg.Storage.Path)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := DefaultConfig()
	cfg.App.Debug = true
	cfg.Storage.QuotaBytes = 1024
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty path", func(c *Config) { c.Storage.Path = "" }},
		{"negative quota", func(c *Config) { c.Storage.QuotaBytes = -1 }},
		{"same keys", func(c *Config) { c.Storage.ViewSettingsKey = c.Storage.DeckListKey }},
		{"bad delay", func(c *Config) { c.Decks.BulkDelay = "soon" }},
		{"negative delay", func(c *Config) { c.Decks.BulkDelay = "-1s" }},
		{"missing url", func(c *Config) { c.URLs.DeckView = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
