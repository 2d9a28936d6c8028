// Package decks owns deck record creation, the canonical record list, and
// the pure filter, sort and aggregate views over it.
package decks

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meur/deckviewer/internal/deckurl"
	"github.com/meur/deckviewer/internal/models"
)

// Factory builds new deck records.
type Factory struct {
	urls deckurl.Builder
	now  func() time.Time
}

// NewFactory creates a Factory deriving image URLs with urls.
func NewFactory(urls deckurl.Builder) *Factory {
	return &Factory{urls: urls, now: time.Now}
}

// SetClock replaces the time source. Intended for tests.
func (f *Factory) SetClock(now func() time.Time) {
	f.now = now
}

// URLs returns the URL builder used for new records.
func (f *Factory) URLs() deckurl.Builder {
	return f.urls
}

// Create trims its inputs and builds a record. It returns false, and no
// record, when the trimmed code is empty.
func (f *Factory) Create(code, playerName, deckName string) (models.DeckRecord, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.DeckRecord{}, false
	}

	now := f.now()
	return models.DeckRecord{
		ID:         newID(now),
		Code:       code,
		PlayerName: models.OptionalString(playerName),
		DeckName:   models.OptionalString(deckName),
		ImageURL:   f.urls.View(code),
		AddedAt:    now,
	}, true
}

// FromParsed creates a record from a parsed bulk line.
func (f *Factory) FromParsed(p models.ParsedLine) (models.DeckRecord, bool) {
	return f.Create(p.Code, deref(p.PlayerName), deref(p.DeckName))
}

// newID combines the creation time with a random suffix so records created
// in the same millisecond stay distinct.
func newID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.New().String()[:8])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
