package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/meur/deckviewer/internal/models"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	colorError  = lipgloss.AdaptiveColor{Light: "#D0312D", Dark: "#FF5F56"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1)
	activeTab     = tabStyle.Bold(true).Underline(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	footerStyle   = lipgloss.NewStyle().Faint(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
	selectedCard = cardStyle.BorderForeground(colorAccent)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
)

var cardWidths = map[models.CardSize]int{
	models.CardSizeSmall:  18,
	models.CardSizeMedium: 26,
	models.CardSizeLarge:  36,
}

func (m Model) View() string {
	settings := m.session.ViewSettings()

	var body string
	switch {
	case m.mode == modeEdit:
		body = m.viewModal() + "\n\n" + m.edit.View()
	case m.mode == modeBulk:
		body = m.viewBulk()
	default:
		if _, open := m.session.Modal(); open {
			body = m.viewModal()
		} else if settings.ActiveTab == models.TabSummary {
			body = m.viewSummary()
		} else {
			body = m.viewDecks(settings)
		}
	}

	parts := []string{m.viewHeader(settings)}
	switch m.mode {
	case modeFilter:
		parts = append(parts, m.filter.View())
	case modeAdd:
		parts = append(parts, m.add.View())
	}
	parts = append(parts, body, m.viewStatus(), footerStyle.Render(m.help()))
	return strings.Join(parts, "\n\n")
}

func (m Model) viewHeader(settings models.ViewSettings) string {
	deckTab, sumTab := activeTab, tabStyle
	if settings.ActiveTab == models.TabSummary {
		deckTab, sumTab = tabStyle, activeTab
	}
	total := len(m.session.Records())
	shown := len(m.session.Visible())
	count := fmt.Sprintf("%d decks", total)
	if shown != total {
		count = fmt.Sprintf("%d of %d decks", shown, total)
	}
	if sel, ok := m.session.DeckFilter(); ok {
		count += "  deck:" + sel.Label()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("Deck Viewer"), "  ",
		deckTab.Render("Decks"), sumTab.Render("Summary"), "  ",
		mutedStyle.Render(fmt.Sprintf("%s  sort:%s  view:%s/%s", count, m.session.SortOrder(), settings.ViewMode, settings.CardSize)),
	)
}

func (m Model) viewDecks(settings models.ViewSettings) string {
	list := m.session.Visible()
	if len(list) == 0 {
		if _, ok := m.session.DeckFilter(); ok || m.session.Filter() != "" {
			return mutedStyle.Render("No decks match the filter.")
		}
		return mutedStyle.Render("No decks yet. Press a to add one or b to paste many.")
	}
	if settings.ViewMode == models.ViewModeList {
		return m.viewList(list)
	}
	return m.viewGrid(list, cardWidths[settings.CardSize])
}

func (m Model) viewList(list []models.DeckRecord) string {
	var b strings.Builder
	for i, rec := range list {
		line := fmt.Sprintf("%-14s %-16s %-20s %s",
			rec.Code,
			truncate(rec.PlayerNameOr("-"), 16),
			truncate(rec.DeckNameOr("-"), 20),
			rec.AddedAt.Local().Format("2006-01-02 15:04"))
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewGrid(list []models.DeckRecord, width int) string {
	if width == 0 {
		width = cardWidths[models.CardSizeMedium]
	}
	perRow := max(1, m.width/(width+4))

	var rows []string
	var row []string
	for i, rec := range list {
		style := cardStyle
		if i == m.cursor {
			style = selectedCard
		}
		inner := width - 2
		card := style.Width(width).Render(strings.Join([]string{
			titleStyle.Render(truncate(rec.Code, inner)),
			truncate(rec.PlayerNameOr("-"), inner),
			mutedStyle.Render(truncate(rec.DeckNameOr("-"), inner)),
		}, "\n"))
		row = append(row, card)
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewSummary() string {
	items := m.session.Summary()
	if len(items) == 0 {
		return mutedStyle.Render("Nothing to summarize.")
	}
	const barWidth = 30
	var b strings.Builder
	for i, item := range items {
		bar := strings.Repeat("█", int(item.Percentage/100*barWidth+0.5))
		line := fmt.Sprintf("%-20s %4d %6.1f%% %s", truncate(item.Label(), 20), item.Count, item.Percentage, bar)
		if i == m.sumCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewModal() string {
	img, ok := m.session.Modal()
	if !ok {
		return ""
	}
	n := len(m.session.Visible())
	player, deck := "-", "-"
	if img.PlayerName != nil {
		player = *img.PlayerName
	}
	if img.DeckName != nil {
		deck = *img.DeckName
	}
	return modalStyle.Render(strings.Join([]string{
		titleStyle.Render(img.DeckCode) + mutedStyle.Render(fmt.Sprintf("  %d / %d", img.Index+1, n)),
		"Player: " + player,
		"Deck:   " + deck,
		mutedStyle.Render(img.URL),
		mutedStyle.Render(m.session.URLs().Confirm(img.DeckCode)),
	}, "\n"))
}

func (m Model) viewBulk() string {
	view := m.bulk.View()
	if ui := m.session.UI(); ui.Loading && ui.Progress != nil {
		view += "\n" + mutedStyle.Render(fmt.Sprintf("Processing %d / %d", ui.Progress.Current, ui.Progress.Total))
	}
	return view
}

func (m Model) viewStatus() string {
	ui := m.session.UI()
	switch {
	case ui.Error != "":
		return errorStyle.Render(ui.Error)
	case ui.Message != "":
		return mutedStyle.Render(ui.Message)
	}
	return ""
}

func (m Model) help() string {
	switch m.mode {
	case modeFilter:
		return "type to filter  enter/esc: done"
	case modeAdd:
		return "player code deck  enter: add  esc: cancel"
	case modeBulk:
		return "ctrl+s: submit  esc: back"
	case modeEdit:
		return "enter: save  esc: cancel"
	}
	if _, open := m.session.Modal(); open {
		return "←/↑ prev  →/↓ next  p: player  n: deck  esc: close"
	}
	if m.session.ViewSettings().ActiveTab == models.TabSummary {
		return "enter: show this deck  tab: decks  q: quit"
	}
	if _, ok := m.session.DeckFilter(); ok {
		return "enter: open  a: add  b: bulk  /: filter  esc: all decks  x: remove  C: clear all  s: sort  v: view  tab: summary  q: quit"
	}
	return "enter: open  a: add  b: bulk  /: filter  x: remove  C: clear all  s: sort  v: view  +/-: size  tab: summary  q: quit"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}
