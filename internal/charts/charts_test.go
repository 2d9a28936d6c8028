package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/deckviewer/internal/models"
)

func TestRenderDeckNamePie(t *testing.T) {
	items := []models.DeckNameSummaryItem{
		{DeckName: "Lugia", Count: 3, Percentage: 75},
		{DeckName: models.UnsetDeckName, Unset: true, Count: 1, Percentage: 25},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderDeckNamePie(&buf, items, DefaultChartConfig()))

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Lugia (75.0%)")
	assert.Contains(t, html, models.UnsetDeckLabel+" (25.0%)")
	assert.Contains(t, html, "4 decks")
}

func TestRenderDeckNamePie_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDeckNamePie(&buf, nil, DefaultChartConfig()))
	assert.Contains(t, buf.String(), "0 decks")
}

func TestRenderDeckNamePie_LiteralUnsetName(t *testing.T) {
	items := []models.DeckNameSummaryItem{
		{DeckName: models.UnsetDeckName, Count: 1, Percentage: 50},
		{DeckName: models.UnsetDeckName, Unset: true, Count: 1, Percentage: 50},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderDeckNamePie(&buf, items, DefaultChartConfig()))
	assert.Contains(t, buf.String(), "unset (50.0%)")
	assert.Contains(t, buf.String(), models.UnsetDeckLabel+" (50.0%)")
}
