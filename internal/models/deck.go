package models

import (
	"strings"
	"time"
)

// DeckRecord is one catalog entry. Code and ImageURL are fixed at creation;
// only PlayerName and DeckName change afterwards. A nil name means "not
// provided"; an empty string is never stored.
type DeckRecord struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	PlayerName *string   `json:"playerName,omitempty"`
	DeckName   *string   `json:"deckName,omitempty"`
	ImageURL   string    `json:"imageUrl"`
	AddedAt    time.Time `json:"addedAt"`
}

// PlayerNameOr returns the player name or fallback when unset.
func (d DeckRecord) PlayerNameOr(fallback string) string {
	if d.PlayerName == nil {
		return fallback
	}
	return *d.PlayerName
}

// DeckNameOr returns the deck name or fallback when unset.
func (d DeckRecord) DeckNameOr(fallback string) string {
	if d.DeckName == nil {
		return fallback
	}
	return *d.DeckName
}

// ParsedLine is the result of parsing one line of bulk input.
type ParsedLine struct {
	PlayerName *string `json:"playerName,omitempty"`
	DeckName   *string `json:"deckName,omitempty"`
	Code       string  `json:"code"`
}

// DeckNameSummaryItem is one group of the deck-name aggregation. Unset marks
// the group of records without a deck name; its DeckName is UnsetDeckName,
// which a user may also have typed as a real name.
type DeckNameSummaryItem struct {
	DeckName   string  `json:"deckName"`
	Unset      bool    `json:"unset,omitempty"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// UnsetDeckName is the DeckName of the aggregation group of records without
// a deck name.
const UnsetDeckName = "unset"

// UnsetDeckLabel is how the unset group is displayed.
const UnsetDeckLabel = "(no deck name)"

// Label returns the display name of the group.
func (i DeckNameSummaryItem) Label() string {
	if i.Unset {
		return UnsetDeckLabel
	}
	return i.DeckName
}

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
