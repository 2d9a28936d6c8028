// Package deckurl builds the official deck page URLs for a deck code.
package deckurl

// Official deck page bases.
const (
	DefaultViewBase    = "https://www.pokemon-card.com/deck/deckView.php/deckID/"
	DefaultConfirmBase = "https://www.pokemon-card.com/deck/confirm.html/deckID/"
)

// URLs holds both pages for one deck code.
type URLs struct {
	View    string `json:"view"`
	Confirm string `json:"confirm"`
}

// Builder concatenates deck codes onto fixed base paths. It never performs
// network I/O.
type Builder struct {
	ViewBase    string
	ConfirmBase string
}

// Default returns a Builder using the official bases.
func Default() Builder {
	return Builder{ViewBase: DefaultViewBase, ConfirmBase: DefaultConfirmBase}
}

// View returns the image/view URL for code.
func (b Builder) View(code string) string {
	return b.ViewBase + code
}

// Confirm returns the detail/confirm URL for code.
func (b Builder) Confirm(code string) string {
	return b.ConfirmBase + code
}

// Generate returns both URLs for code.
func (b Builder) Generate(code string) URLs {
	return URLs{View: b.View(code), Confirm: b.Confirm(code)}
}
