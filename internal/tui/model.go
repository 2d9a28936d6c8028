// Package tui is a terminal front end for a deck catalog session.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meur/deckviewer/internal/app"
	"github.com/meur/deckviewer/internal/apperr"
	"github.com/meur/deckviewer/internal/bulk"
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/models"
	"github.com/meur/deckviewer/internal/parser"
)

type mode int

const (
	modeBrowse mode = iota
	modeFilter
	modeAdd
	modeBulk
	modeEdit
)

type bulkDoneMsg struct {
	result bulk.Result
	err    error
}

type progressTickMsg struct{}

type savedMsg struct{ err error }

var sortCycle = []decks.SortOrder{decks.SortNewest, decks.SortOldest, decks.SortPlayerName, decks.SortDeckName}

// Model is the bubbletea model driving a Session.
type Model struct {
	session *app.Session
	ctx     context.Context

	mode      mode
	cursor    int
	sumCursor int
	editField decks.Field
	width     int
	height    int

	filter textinput.Model
	add    textinput.Model
	edit   textinput.Model
	bulk   textarea.Model
}

// New creates a Model over session. ctx bounds the storage calls the
// model makes.
func New(ctx context.Context, session *app.Session) Model {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "player or deck name"
	filter.SetValue(session.Filter())

	add := textinput.New()
	add.Prompt = "+ "
	add.Placeholder = "player code deck"

	edit := textinput.New()
	edit.Prompt = "> "

	ta := textarea.New()
	ta.Placeholder = "one deck per line: player<TAB>code<TAB>deck"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(72)
	ta.SetHeight(8)

	return Model{
		session: session,
		ctx:     ctx,
		filter:  filter,
		add:     add,
		edit:    edit,
		bulk:    ta,
		width:   80,
		height:  24,
	}
}

// Run starts a full-screen program over session.
func Run(ctx context.Context, session *app.Session) error {
	p := tea.NewProgram(New(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bulk.SetWidth(min(72, max(20, msg.Width-4)))
		return m, nil

	case bulkDoneMsg:
		if msg.err == nil && msg.result.Outcome() == bulk.OutcomeComplete {
			m.bulk.SetValue("")
			m.mode = modeBrowse
		}
		m.clampCursor()
		return m, nil

	case progressTickMsg:
		if m.session.UI().Loading {
			return m, tickProgress()
		}
		return m, nil

	case savedMsg:
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeAdd:
			return m.updateAdd(msg)
		case modeBulk:
			return m.updateBulk(msg)
		case modeEdit:
			return m.updateEdit(msg)
		}
		if _, open := m.session.Modal(); open {
			return m.updateModal(msg)
		}
		if m.session.ViewSettings().ActiveTab == models.TabSummary {
			return m.updateSummary(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.session.Visible()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case "/":
		m.mode = modeFilter
		return m, m.filter.Focus()
	case "a":
		m.mode = modeAdd
		m.add.SetValue("")
		return m, m.add.Focus()
	case "b":
		m.mode = modeBulk
		m.bulk.SetValue(m.session.Form().BulkInput)
		return m, m.bulk.Focus()
	case "enter":
		if m.cursor < len(list) {
			m.session.OpenModal(list[m.cursor].ID)
		}
	case "x", "delete":
		if m.cursor < len(list) {
			m.session.Remove(m.ctx, list[m.cursor].ID)
			m.clampCursor()
		}
	case "C":
		m.session.ClearAll(m.ctx)
		m.filter.SetValue("")
		m.session.SetFilter("")
		m.cursor = 0
	case "s":
		m.session.SetSortOrder(nextSort(m.session.SortOrder()))
	case "v":
		settings := m.session.ViewSettings()
		if settings.ViewMode == models.ViewModeGrid {
			settings.ViewMode = models.ViewModeList
		} else {
			settings.ViewMode = models.ViewModeGrid
		}
		return m, m.saveSettings(settings)
	case "+", "-":
		settings := m.session.ViewSettings()
		settings.CardSize = stepCardSize(settings.CardSize, msg.String() == "+")
		return m, m.saveSettings(settings)
	case "tab":
		return m, m.switchTab()
	case "esc":
		m.session.DismissError()
		if _, ok := m.session.DeckFilter(); ok {
			m.session.SetDeckFilter(nil)
			m.clampCursor()
		}
	}
	return m, nil
}

func (m Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.session.Summary()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.sumCursor > 0 {
			m.sumCursor--
		}
	case "down", "j":
		if m.sumCursor < len(items)-1 {
			m.sumCursor++
		}
	case "enter":
		if m.sumCursor < len(items) {
			sel := decks.SelectionOf(items[m.sumCursor])
			m.filter.SetValue("")
			m.session.SetFilter("")
			m.session.SetDeckFilter(&sel)
			m.cursor = 0
			return m, m.switchTab()
		}
	case "tab", "esc":
		return m, m.switchTab()
	}
	return m, nil
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p":
		return m.startEdit(decks.FieldPlayerName)
	case "n":
		return m.startEdit(decks.FieldDeckName)
	case "q":
		m.session.CloseModal()
		return m, nil
	}
	m.session.HandleKey(msg.String())
	if img, ok := m.session.Modal(); ok {
		m.cursor = img.Index
	}
	return m, nil
}

func (m Model) startEdit(field decks.Field) (tea.Model, tea.Cmd) {
	img, ok := m.session.Modal()
	if !ok {
		return m, nil
	}
	current := img.PlayerName
	if field == decks.FieldDeckName {
		current = img.DeckName
	}
	m.editField = field
	m.edit.SetValue("")
	if current != nil {
		m.edit.SetValue(*current)
	}
	m.mode = modeEdit
	return m, m.edit.Focus()
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.edit.Blur()
		return m, nil
	case "enter":
		edit, err := decks.ParseEdit(string(m.editField), m.edit.Value())
		if err == nil {
			m.session.EditModal(m.ctx, edit)
		}
		m.mode = modeBrowse
		m.edit.Blur()
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeBrowse
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.session.SetFilter(m.filter.Value())
	m.clampCursor()
	return m, cmd
}

// updateAdd reads one line in the bulk line format, so "code",
// "player code" and "player code deck" all work.
func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.add.Blur()
		return m, nil
	case "enter":
		line := parser.ParseLine(m.add.Value())
		_, err := m.session.AddSingle(m.ctx, line.Code, deref(line.PlayerName), deref(line.DeckName))
		// A rejected line stays in the box; a failed save still added the deck.
		if !apperr.Is(err, apperr.KindValidation) && !apperr.Is(err, apperr.KindDuplicate) {
			m.mode = modeBrowse
			m.add.Blur()
			m.cursor = 0
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.add, cmd = m.add.Update(msg)
	return m, cmd
}

func (m Model) updateBulk(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		form := m.session.Form()
		form.BulkInput = m.bulk.Value()
		m.session.SetForm(form)
		m.mode = modeBrowse
		m.bulk.Blur()
		return m, nil
	case "ctrl+s":
		if m.session.UI().Loading {
			return m, nil
		}
		form := m.session.Form()
		form.BulkInput = m.bulk.Value()
		m.session.SetForm(form)
		return m, tea.Batch(m.submitBulk(m.bulk.Value()), tickProgress())
	}
	var cmd tea.Cmd
	m.bulk, cmd = m.bulk.Update(msg)
	return m, cmd
}

func (m Model) submitBulk(text string) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		result, err := session.SubmitBulk(ctx, text)
		return bulkDoneMsg{result: result, err: err}
	}
}

func tickProgress() tea.Cmd {
	return tea.Tick(bulk.DefaultDelay, func(time.Time) tea.Msg { return progressTickMsg{} })
}

func (m Model) switchTab() tea.Cmd {
	settings := m.session.ViewSettings()
	if settings.ActiveTab == models.TabSummary {
		settings.ActiveTab = models.TabDeckList
	} else {
		settings.ActiveTab = models.TabSummary
	}
	return m.saveSettings(settings)
}

// saveSettings applies settings right away; the storage error, if any,
// lands in the session UI state.
func (m Model) saveSettings(settings models.ViewSettings) tea.Cmd {
	_, err := m.session.SetViewSettings(m.ctx, settings)
	return func() tea.Msg { return savedMsg{err: err} }
}

func (m *Model) clampCursor() {
	n := len(m.session.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func nextSort(current decks.SortOrder) decks.SortOrder {
	for i, o := range sortCycle {
		if o == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return decks.SortNewest
}

func stepCardSize(size models.CardSize, up bool) models.CardSize {
	sizes := []models.CardSize{models.CardSizeSmall, models.CardSizeMedium, models.CardSizeLarge}
	for i, s := range sizes {
		if s != size {
			continue
		}
		switch {
		case up && i < len(sizes)-1:
			return sizes[i+1]
		case !up && i > 0:
			return sizes[i-1]
		}
		return s
	}
	return models.CardSizeMedium
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
