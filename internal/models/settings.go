package models

// ViewMode selects between the card grid and the compact list.
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

// CardSize controls how large each card is drawn in grid mode.
type CardSize string

const (
	CardSizeSmall  CardSize = "small"
	CardSizeMedium CardSize = "medium"
	CardSizeLarge  CardSize = "large"
)

// TabMode selects the active tab.
type TabMode string

const (
	TabDeckList TabMode = "deckList"
	TabSummary  TabMode = "summary"
)

// ViewSettings holds display preferences. They are persisted separately
// from deck records.
type ViewSettings struct {
	ViewMode  ViewMode `json:"viewMode"`
	CardSize  CardSize `json:"cardSize"`
	ActiveTab TabMode  `json:"activeTab"`
}

// DefaultViewSettings returns the settings used when nothing is stored.
func DefaultViewSettings() ViewSettings {
	return ViewSettings{
		ViewMode:  ViewModeGrid,
		CardSize:  CardSizeMedium,
		ActiveTab: TabDeckList,
	}
}

// Normalize replaces each unknown or missing field with its default,
// independently of the other fields.
func (v ViewSettings) Normalize() ViewSettings {
	def := DefaultViewSettings()
	out := v
	if !out.ViewMode.Valid() {
		out.ViewMode = def.ViewMode
	}
	if !out.CardSize.Valid() {
		out.CardSize = def.CardSize
	}
	if !out.ActiveTab.Valid() {
		out.ActiveTab = def.ActiveTab
	}
	return out
}

func (m ViewMode) Valid() bool {
	return m == ViewModeGrid || m == ViewModeList
}

func (s CardSize) Valid() bool {
	switch s {
	case CardSizeSmall, CardSizeMedium, CardSizeLarge:
		return true
	}
	return false
}

func (t TabMode) Valid() bool {
	return t == TabDeckList || t == TabSummary
}
