// Package charts renders the deck-name summary as an interactive HTML page.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/meur/deckviewer/internal/models"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Slice colors, reused cyclically
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:      "Deck types",
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// RenderDeckNamePie writes a pie chart of items to w. Each slice is one
// deck name; its tooltip shows the count and the share of the total.
func RenderDeckNamePie(w io.Writer, items []models.DeckNameSummaryItem, config ChartConfig) error {
	pie := charts.NewPie()

	total := 0
	for _, item := range items {
		total += item.Count
	}

	subtitle := config.Subtitle
	if subtitle == "" {
		subtitle = fmt.Sprintf("%d decks", total)
	}

	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: config.Title,
			Width:     config.Width,
			Height:    config.Height,
			Theme:     config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
	)

	data := make([]opts.PieData, len(items))
	for i, item := range items {
		data[i] = opts.PieData{
			Name:  fmt.Sprintf("%s (%.1f%%)", item.Label(), item.Percentage),
			Value: item.Count,
		}
	}

	pie.AddSeries("Decks", data).
		SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{"35%", "70%"},
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(true),
			}),
		)

	if err := pie.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
