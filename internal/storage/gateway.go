package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/meur/deckviewer/internal/apperr"
	"github.com/meur/deckviewer/internal/models"
)

// Default storage keys, shared with the browser build.
const (
	DefaultDeckListKey     = "pokemonTcgDeckList"
	DefaultViewSettingsKey = "pokemonTcgViewSettings"
)

// Keys names the two values the gateway manages.
type Keys struct {
	DeckList     string
	ViewSettings string
}

// DefaultKeys returns the keys used by the browser build.
func DefaultKeys() Keys {
	return Keys{DeckList: DefaultDeckListKey, ViewSettings: DefaultViewSettingsKey}
}

// Gateway serializes deck records and view settings to a KV. Every failure
// is returned as an *apperr.Error; nothing panics past this boundary.
//
// The deck list is stored as an unversioned JSON array. A stored shape that
// no longer decodes loads as an empty list with a PARSE_ERROR. Single
// entries that break record invariants are dropped and the rest load.
type Gateway struct {
	kv     KV
	keys   Keys
	logger *zap.Logger
}

// NewGateway creates a Gateway over kv.
func NewGateway(kv KV, keys Keys, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{kv: kv, keys: keys, logger: logger}
}

// storedDeck is the on-disk shape of a record: addedAt is an ISO-8601 string.
type storedDeck struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	PlayerName *string `json:"playerName,omitempty"`
	DeckName   *string `json:"deckName,omitempty"`
	ImageURL   string  `json:"imageUrl"`
	AddedAt    string  `json:"addedAt"`
}

// LoadDecks reads the stored deck list. A missing entry yields an empty list
// and no error. On failure the returned list is empty, never nil.
func (g *Gateway) LoadDecks(ctx context.Context) ([]models.DeckRecord, error) {
	raw, ok, err := g.kv.Get(ctx, g.keys.DeckList)
	if err != nil {
		g.logger.Warn("Failed to read deck list", zap.String("key", g.keys.DeckList), zap.Error(err))
		return []models.DeckRecord{}, apperr.Wrap(apperr.KindStorage, apperr.MsgStorageLoadFailed, err)
	}
	if !ok {
		return []models.DeckRecord{}, nil
	}

	records, err := g.decodeDecks(raw)
	if err != nil {
		g.logger.Warn("Stored deck list is malformed", zap.String("key", g.keys.DeckList), zap.Error(err))
		return []models.DeckRecord{}, apperr.Wrap(apperr.KindParse, apperr.MsgStorageParseFailed, err).
			WithDetail("key", g.keys.DeckList)
	}

	return g.sanitize(records), nil
}

// decodeDecks fails only when raw is not a list of records. An entry whose
// addedAt does not parse is dropped on its own.
func (g *Gateway) decodeDecks(raw string) ([]models.DeckRecord, error) {
	var stored []storedDeck
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, err
	}

	records := make([]models.DeckRecord, 0, len(stored))
	for _, sd := range stored {
		addedAt, err := time.Parse(time.RFC3339Nano, sd.AddedAt)
		if err != nil {
			g.logger.Warn("Dropping stored deck with a bad timestamp",
				zap.String("id", sd.ID), zap.String("addedAt", sd.AddedAt), zap.Error(err))
			continue
		}
		records = append(records, models.DeckRecord{
			ID:         sd.ID,
			Code:       sd.Code,
			PlayerName: sd.PlayerName,
			DeckName:   sd.DeckName,
			ImageURL:   sd.ImageURL,
			AddedAt:    addedAt,
		})
	}
	return records, nil
}

// sanitize drops entries that break record invariants: empty codes and
// repeated ids (the first occurrence wins). Blank names become unset.
func (g *Gateway) sanitize(records []models.DeckRecord) []models.DeckRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, r := range records {
		if r.Code == "" || seen[r.ID] {
			g.logger.Warn("Dropping invalid stored deck", zap.String("id", r.ID), zap.String("code", r.Code))
			continue
		}
		seen[r.ID] = true
		if r.PlayerName != nil {
			r.PlayerName = models.OptionalString(*r.PlayerName)
		}
		if r.DeckName != nil {
			r.DeckName = models.OptionalString(*r.DeckName)
		}
		out = append(out, r)
	}
	return out
}

// SaveDecks writes the full list as one value.
func (g *Gateway) SaveDecks(ctx context.Context, records []models.DeckRecord) error {
	stored := make([]storedDeck, 0, len(records))
	for _, r := range records {
		stored = append(stored, storedDeck{
			ID:         r.ID,
			Code:       r.Code,
			PlayerName: r.PlayerName,
			DeckName:   r.DeckName,
			ImageURL:   r.ImageURL,
			AddedAt:    r.AddedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, apperr.MsgStorageSaveFailed, err)
	}
	return g.write(ctx, g.keys.DeckList, data)
}

// Clear deletes the stored deck list and view settings. Loading afterwards
// yields an empty list and default settings.
func (g *Gateway) Clear(ctx context.Context) error {
	for _, key := range []string{g.keys.DeckList, g.keys.ViewSettings} {
		if err := g.kv.Delete(ctx, key); err != nil {
			g.logger.Warn("Failed to delete stored value", zap.String("key", key), zap.Error(err))
			return apperr.Wrap(apperr.KindStorage, apperr.MsgStorageSaveFailed, err).WithDetail("key", key)
		}
	}
	return nil
}

// LoadViewSettings reads the view settings. Missing or unknown fields fall
// back to their defaults individually. On a read or parse failure the
// defaults are returned together with the error.
func (g *Gateway) LoadViewSettings(ctx context.Context) (models.ViewSettings, error) {
	raw, ok, err := g.kv.Get(ctx, g.keys.ViewSettings)
	if err != nil {
		g.logger.Warn("Failed to read view settings", zap.Error(err))
		return models.DefaultViewSettings(), apperr.Wrap(apperr.KindStorage, apperr.MsgStorageLoadFailed, err)
	}
	if !ok {
		return models.DefaultViewSettings(), nil
	}

	var settings models.ViewSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		g.logger.Warn("Stored view settings are malformed", zap.Error(err))
		return models.DefaultViewSettings(), apperr.Wrap(apperr.KindParse, apperr.MsgStorageParseFailed, err).
			WithDetail("key", g.keys.ViewSettings)
	}
	return settings.Normalize(), nil
}

// SaveViewSettings writes the view settings.
func (g *Gateway) SaveViewSettings(ctx context.Context, settings models.ViewSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, apperr.MsgStorageSaveFailed, err)
	}
	return g.write(ctx, g.keys.ViewSettings, data)
}

func (g *Gateway) write(ctx context.Context, key string, data []byte) error {
	err := g.kv.Set(ctx, key, string(data))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrQuotaExceeded):
		g.logger.Warn("Storage quota exceeded", zap.String("key", key), zap.Int("bytes", len(data)))
		return apperr.Wrap(apperr.KindQuota, apperr.MsgStorageQuotaExceeded, err).WithDetail("bytes", len(data))
	default:
		g.logger.Warn("Failed to write storage", zap.String("key", key), zap.Error(err))
		return apperr.Wrap(apperr.KindStorage, apperr.MsgStorageSaveFailed, err)
	}
}
