package modal

import "github.com/meur/deckviewer/internal/models"

// Action is a keyboard intent while the view is open.
type Action int

const (
	ActionNone Action = iota
	ActionClose
	ActionPrev
	ActionNext
)

// KeyAction maps a key name to an intent. Both DOM key names and terminal
// key names are accepted.
func KeyAction(key string) Action {
	switch key {
	case "Escape", "esc":
		return ActionClose
	case "ArrowUp", "ArrowLeft", "up", "left":
		return ActionPrev
	case "ArrowDown", "ArrowRight", "down", "right":
		return ActionNext
	}
	return ActionNone
}

// HandleKey applies the intent bound to key. It reports whether the key was
// consumed; keys are ignored while the view is closed.
func (m *Modal) HandleKey(key string, list []models.DeckRecord) bool {
	if !m.IsOpen() {
		return false
	}
	switch KeyAction(key) {
	case ActionClose:
		m.Close()
		return true
	case ActionPrev:
		m.Navigate(Prev, list)
		return true
	case ActionNext:
		m.Navigate(Next, list)
		return true
	}
	return false
}
