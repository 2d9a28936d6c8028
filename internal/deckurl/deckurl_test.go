package deckurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGenerate(t *testing.T) {
	urls := Default().Generate("abc123-XYZ")
	assert.Equal(t, "https://www.pokemon-card.com/deck/deckView.php/deckID/abc123-XYZ", urls.View)
	assert.Equal(t, "https://www.pokemon-card.com/deck/confirm.html/deckID/abc123-XYZ", urls.Confirm)
}

func TestCustomBases(t *testing.T) {
	b := Builder{ViewBase: "http://img.local/", ConfirmBase: "http://detail.local/"}
	assert.Equal(t, "http://img.local/X", b.View("X"))
	assert.Equal(t, "http://detail.local/X", b.Confirm("X"))
}
