package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/meur/deckviewer/internal/models"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// deckRow is the exported shape of a record.
type deckRow struct {
	ID         string `json:"id" yaml:"id"`
	Code       string `json:"code" yaml:"code"`
	PlayerName string `json:"playerName,omitempty" yaml:"playerName,omitempty"`
	DeckName   string `json:"deckName,omitempty" yaml:"deckName,omitempty"`
	ImageURL   string `json:"imageUrl" yaml:"imageUrl"`
	ConfirmURL string `json:"confirmUrl" yaml:"confirmUrl"`
	AddedAt    string `json:"addedAt" yaml:"addedAt"`
}

func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case "table", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func writeDecks(w io.Writer, format string, rows []deckRow) error {
	if done, err := writeStructured(w, format, rows); done {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tPLAYER\tDECK\tADDED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Code, dash(r.PlayerName), dash(r.DeckName), r.AddedAt)
	}
	return tw.Flush()
}

func writeSummary(w io.Writer, format string, items []models.DeckNameSummaryItem) error {
	if done, err := writeStructured(w, format, items); done {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DECK\tCOUNT\tSHARE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", item.Label(), item.Count, item.Percentage)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
