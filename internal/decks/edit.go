package decks

import (
	"fmt"

	"github.com/meur/deckviewer/internal/models"
)

// Field names an editable record field.
type Field string

const (
	FieldPlayerName Field = "playerName"
	FieldDeckName   Field = "deckName"
)

// Edit changes one editable field of a record. The only implementations
// are SetPlayerName and SetDeckName.
type Edit interface {
	Field() Field
	Value() string
	apply(*models.DeckRecord)
}

// SetPlayerName replaces the player name. A value that trims to empty
// unsets it.
type SetPlayerName string

func (e SetPlayerName) Field() Field  { return FieldPlayerName }
func (e SetPlayerName) Value() string { return string(e) }
func (e SetPlayerName) apply(r *models.DeckRecord) {
	r.PlayerName = models.OptionalString(string(e))
}

// SetDeckName replaces the deck name. A value that trims to empty unsets it.
type SetDeckName string

func (e SetDeckName) Field() Field  { return FieldDeckName }
func (e SetDeckName) Value() string { return string(e) }
func (e SetDeckName) apply(r *models.DeckRecord) {
	r.DeckName = models.OptionalString(string(e))
}

// Apply returns a copy of r with edits applied in order.
func Apply(r models.DeckRecord, edits ...Edit) models.DeckRecord {
	for _, e := range edits {
		e.apply(&r)
	}
	return r
}

// ParseEdit maps an external field name onto an Edit.
func ParseEdit(field, value string) (Edit, error) {
	switch Field(field) {
	case FieldPlayerName:
		return SetPlayerName(value), nil
	case FieldDeckName:
		return SetDeckName(value), nil
	default:
		return nil, fmt.Errorf("field %q is not editable", field)
	}
}
