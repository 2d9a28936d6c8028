package decks

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/meur/deckviewer/internal/models"
)

// Filter returns the records whose player name or deck name contains text,
// ignoring case. Codes are not matched. Blank text returns records
// unchanged.
func Filter(records []models.DeckRecord, text string) []models.DeckRecord {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return records
	}

	out := make([]models.DeckRecord, 0, len(records))
	for _, r := range records {
		if containsFold(r.PlayerName, needle) || containsFold(r.DeckName, needle) {
			out = append(out, r)
		}
	}
	return out
}

// DeckSelection picks the records of one deck-name summary group. Names
// match exactly, the way AggregateByDeckName groups them.
type DeckSelection struct {
	Name  string `json:"name,omitempty"`
	Unset bool   `json:"unset,omitempty"`
}

// SelectionOf returns the selection of the group item summarizes.
func SelectionOf(item models.DeckNameSummaryItem) DeckSelection {
	if item.Unset {
		return DeckSelection{Unset: true}
	}
	return DeckSelection{Name: item.DeckName}
}

// Matches reports whether r belongs to the selected group.
func (d DeckSelection) Matches(r models.DeckRecord) bool {
	if d.Unset {
		return r.DeckName == nil
	}
	return r.DeckName != nil && *r.DeckName == d.Name
}

// Label returns the display name of the selected group.
func (d DeckSelection) Label() string {
	if d.Unset {
		return models.UnsetDeckLabel
	}
	return d.Name
}

// FilterByDeck returns the records in sel's group, keeping their order.
func FilterByDeck(records []models.DeckRecord, sel DeckSelection) []models.DeckRecord {
	out := make([]models.DeckRecord, 0, len(records))
	for _, r := range records {
		if sel.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(field *string, lowerNeedle string) bool {
	return field != nil && strings.Contains(strings.ToLower(*field), lowerNeedle)
}

// AggregateByDeckName groups records by deck name and reports each group's
// share of the total, rounded to one decimal place. Records without a deck
// name fall into one group flagged Unset, kept apart from a deck that is
// literally named models.UnsetDeckName. Groups are ordered by
// count descending; on ties named groups come before the unset group and
// otherwise keep first-seen order.
func AggregateByDeckName(records []models.DeckRecord) []models.DeckNameSummaryItem {
	type group struct {
		name  string
		unset bool
		count int
		first int
	}

	var groups []*group
	named := make(map[string]*group)
	var unset *group

	for i, r := range records {
		var g *group
		if r.DeckName == nil {
			if unset == nil {
				unset = &group{name: models.UnsetDeckName, unset: true, first: i}
				groups = append(groups, unset)
			}
			g = unset
		} else {
			g = named[*r.DeckName]
			if g == nil {
				g = &group{name: *r.DeckName, first: i}
				named[*r.DeckName] = g
				groups = append(groups, g)
			}
		}
		g.count++
	}

	slices.SortStableFunc(groups, func(a, b *group) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		if a.unset != b.unset {
			if a.unset {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.first, b.first)
	})

	total := len(records)
	out := make([]models.DeckNameSummaryItem, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.DeckNameSummaryItem{
			DeckName:   g.name,
			Unset:      g.unset,
			Count:      g.count,
			Percentage: percentage(g.count, total),
		})
	}
	return out
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// SortOrder selects how a visible list is ordered.
type SortOrder string

const (
	SortNewest     SortOrder = "newest"
	SortOldest     SortOrder = "oldest"
	SortPlayerName SortOrder = "player"
	SortDeckName   SortOrder = "deck"
)

// Valid reports whether o is a known order.
func (o SortOrder) Valid() bool {
	switch o {
	case SortNewest, SortOldest, SortPlayerName, SortDeckName:
		return true
	}
	return false
}

// Sort returns a sorted copy of records. SortNewest keeps store order,
// where each submission sits ahead of older ones; SortOldest reverses it.
// Name orders are stable and put unset names last.
func Sort(records []models.DeckRecord, order SortOrder) []models.DeckRecord {
	out := slices.Clone(records)
	switch order {
	case SortOldest:
		slices.Reverse(out)
	case SortPlayerName:
		slices.SortStableFunc(out, func(a, b models.DeckRecord) int {
			return compareOptional(a.PlayerName, b.PlayerName)
		})
	case SortDeckName:
		slices.SortStableFunc(out, func(a, b models.DeckRecord) int {
			return compareOptional(a.DeckName, b.DeckName)
		})
	}
	return out
}

func compareOptional(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return strings.Compare(strings.ToLower(*a), strings.ToLower(*b))
}
