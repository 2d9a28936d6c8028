// Package parser turns free-form bulk input into structured deck lines.
//
// A line containing a tab is treated as a spreadsheet row
// (player, code, deck name), where fields may contain spaces or commas.
// Otherwise the line is split on runs of commas, semicolons and whitespace.
package parser

import (
	"regexp"
	"strings"

	"github.com/meur/deckviewer/internal/models"
)

var delimiterRun = regexp.MustCompile(`[,;\s]+`)

// ParseLine parses one trimmed, non-empty line. A missing code is returned
// as the empty string; callers treat that as a per-line error.
func ParseLine(line string) models.ParsedLine {
	var parts []string
	if strings.Contains(line, "\t") {
		parts = strings.Split(line, "\t")
	} else {
		parts = delimiterRun.Split(line, -1)
	}
	return fromParts(parts)
}

func fromParts(parts []string) models.ParsedLine {
	var out models.ParsedLine
	switch {
	case len(parts) >= 3:
		out.PlayerName = models.OptionalString(parts[0])
		out.Code = strings.TrimSpace(parts[1])
		out.DeckName = models.OptionalString(parts[2])
	case len(parts) == 2:
		out.PlayerName = models.OptionalString(parts[0])
		out.Code = strings.TrimSpace(parts[1])
	case len(parts) == 1:
		out.Code = strings.TrimSpace(parts[0])
	}
	return out
}

// SplitLines splits text on newlines, trims each line and drops blank ones.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
