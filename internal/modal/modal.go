// Package modal tracks the enlarged single-deck view and its prev/next
// traversal over the visible list.
package modal

import (
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/models"
)

// Direction selects the traversal step.
type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// Image is what the enlarged view displays. Index is the position of the
// deck in the list the view is navigating.
type Image struct {
	DeckID     string  `json:"deckId"`
	URL        string  `json:"url"`
	DeckCode   string  `json:"deckCode"`
	PlayerName *string `json:"playerName,omitempty"`
	DeckName   *string `json:"deckName,omitempty"`
	Index      int     `json:"index"`
}

func imageOf(rec models.DeckRecord, index int) *Image {
	return &Image{
		DeckID:     rec.ID,
		URL:        rec.ImageURL,
		DeckCode:   rec.Code,
		PlayerName: rec.PlayerName,
		DeckName:   rec.DeckName,
		Index:      index,
	}
}

// Modal is either closed or open on one image. The zero value is closed.
type Modal struct {
	image *Image
}

// IsOpen reports whether an image is displayed.
func (m *Modal) IsOpen() bool {
	return m.image != nil
}

// Current returns the displayed image.
func (m *Modal) Current() (Image, bool) {
	if m.image == nil {
		return Image{}, false
	}
	return *m.image, true
}

// Open displays rec at position index.
func (m *Modal) Open(rec models.DeckRecord, index int) {
	m.image = imageOf(rec, index)
}

// Close hides the view.
func (m *Modal) Close() {
	m.image = nil
}

// Navigate moves one step in dir over list, wrapping at both ends. It is a
// no-op when closed or when list is empty, and reports whether the view
// moved.
func (m *Modal) Navigate(dir Direction, list []models.DeckRecord) bool {
	if m.image == nil || len(list) == 0 {
		return false
	}
	m.Revalidate(list)
	if m.image == nil {
		return false
	}

	n := len(list)
	i := m.image.Index
	switch dir {
	case Prev:
		i = (i - 1 + n) % n
	case Next:
		i = (i + 1) % n
	default:
		return false
	}
	m.image = imageOf(list[i], i)
	return true
}

// UpdateField applies edit to the displayed image and returns the id of the
// deck it belongs to, so the caller can apply the same edit to the store.
func (m *Modal) UpdateField(edit decks.Edit) (string, bool) {
	if m.image == nil {
		return "", false
	}
	rec := decks.Apply(models.DeckRecord{
		PlayerName: m.image.PlayerName,
		DeckName:   m.image.DeckName,
	}, edit)
	m.image.PlayerName = rec.PlayerName
	m.image.DeckName = rec.DeckName
	return m.image.DeckID, true
}

// Revalidate re-anchors the view after list changed (a filter edit or a
// store mutation). The displayed deck is looked up by id; if it is gone the
// index is clamped to the last position; an empty list closes the view.
func (m *Modal) Revalidate(list []models.DeckRecord) {
	if m.image == nil {
		return
	}
	if len(list) == 0 {
		m.Close()
		return
	}
	for i := range list {
		if list[i].ID == m.image.DeckID {
			m.image = imageOf(list[i], i)
			return
		}
	}
	i := m.image.Index
	if i >= len(list) {
		i = len(list) - 1
	}
	if i < 0 {
		i = 0
	}
	m.image = imageOf(list[i], i)
}
