package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meur/deckviewer/internal/models"
)

func strp(s string) *string { return &s }

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want models.ParsedLine
	}{
		{
			name: "tab player and code",
			line: "田中\tABC123",
			want: models.ParsedLine{PlayerName: strp("田中"), Code: "ABC123"},
		},
		{
			name: "tab three fields",
			line: "佐藤\tDEF\tMy Deck, v2",
			want: models.ParsedLine{PlayerName: strp("佐藤"), Code: "DEF", DeckName: strp("My Deck, v2")},
		},
		{
			name: "tab fields keep inner spaces",
			line: "Ash Ketchum\t ggnNLg-abc \t Lost Box ",
			want: models.ParsedLine{PlayerName: strp("Ash Ketchum"), Code: "ggnNLg-abc", DeckName: strp("Lost Box")},
		},
		{
			name: "tab extra fields ignored",
			line: "p\tc\td\textra",
			want: models.ParsedLine{PlayerName: strp("p"), Code: "c", DeckName: strp("d")},
		},
		{
			name: "code only",
			line: "ABC123",
			want: models.ParsedLine{Code: "ABC123"},
		},
		{
			name: "space separated pair",
			line: "Misty XYZ",
			want: models.ParsedLine{PlayerName: strp("Misty"), Code: "XYZ"},
		},
		{
			name: "tab takes precedence over other delimiters",
			line: "Brock,; \tXYZ",
			want: models.ParsedLine{PlayerName: strp("Brock,;"), Code: "XYZ"},
		},
		{
			name: "comma run collapses",
			line: "Brock,, ;XYZ;Rock",
			want: models.ParsedLine{PlayerName: strp("Brock"), Code: "XYZ", DeckName: strp("Rock")},
		},
		{
			name: "trailing delimiter leaves empty code",
			line: "ABC,",
			want: models.ParsedLine{PlayerName: strp("ABC"), Code: ""},
		},
		{
			name: "empty tab field normalized to unset",
			line: "\tCODE\t",
			want: models.ParsedLine{Code: "CODE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.line))
		})
	}
}

func TestParseLine_SpaceJoinedRoundTrip(t *testing.T) {
	triples := [][3]string{
		{"Red", "AAA111", "Charizard"},
		{"田中", "xYz-9", "ドラパルト"},
		{"a", "b", "c"},
	}
	for _, tr := range triples {
		got := ParseLine(strings.Join(tr[:], " "))
		assert.Equal(t, tr[0], *got.PlayerName)
		assert.Equal(t, tr[1], got.Code)
		assert.Equal(t, tr[2], *got.DeckName)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("  a \n\n\t\nb\r\n   \nc")
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Empty(t, SplitLines(" \n \n"))
}
