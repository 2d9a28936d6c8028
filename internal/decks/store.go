package decks

import (
	"github.com/meur/deckviewer/internal/models"
)

// Store holds the canonical, ordered record list. It never touches
// persistence; callers save the post-mutation list themselves. Store is not
// safe for concurrent use.
type Store struct {
	records []models.DeckRecord
}

// NewStore creates a Store holding a copy of records.
func NewStore(records []models.DeckRecord) *Store {
	s := &Store{}
	s.ReplaceAll(records)
	return s
}

// Records returns a copy of the current list.
func (s *Store) Records() []models.DeckRecord {
	out := make([]models.DeckRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Len() int {
	return len(s.records)
}

// Get returns the record with id.
func (s *Store) Get(id string) (models.DeckRecord, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return s.records[i], true
	}
	return models.DeckRecord{}, false
}

// IndexOf returns the position of id, or -1.
func (s *Store) IndexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// ContainsCode reports whether any record has code.
func (s *Store) ContainsCode(code string) bool {
	for i := range s.records {
		if s.records[i].Code == code {
			return true
		}
	}
	return false
}

// ReplaceAll overwrites the list.
func (s *Store) ReplaceAll(records []models.DeckRecord) {
	s.records = make([]models.DeckRecord, len(records))
	copy(s.records, records)
}

// Prepend inserts records at the head, keeping their order, ahead of the
// existing records.
func (s *Store) Prepend(records ...models.DeckRecord) {
	if len(records) == 0 {
		return
	}
	next := make([]models.DeckRecord, 0, len(records)+len(s.records))
	next = append(next, records...)
	next = append(next, s.records...)
	s.records = next
}

// Update applies edits to the record with id. It reports false if no such
// record exists.
func (s *Store) Update(id string, edits ...Edit) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.records[i] = Apply(s.records[i], edits...)
	return true
}

// Remove deletes the record with id. It reports false if no such record
// exists.
func (s *Store) Remove(id string) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	next := make([]models.DeckRecord, 0, len(s.records)-1)
	next = append(next, s.records[:i]...)
	next = append(next, s.records[i+1:]...)
	s.records = next
	return true
}

// Clear empties the list.
func (s *Store) Clear() {
	s.records = nil
}
