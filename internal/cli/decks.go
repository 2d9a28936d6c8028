package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meur/deckviewer/internal/bulk"
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/deckurl"
	"github.com/meur/deckviewer/internal/models"
	"github.com/meur/deckviewer/internal/parser"
)

func newImportCmd(a *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Add decks from bulk text, one per line (reads stdin without a file or with -)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if dryRun {
				return previewImport(cmd.OutOrStdout(), text)
			}

			session, err := a.open(cmd)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := session.SubmitBulk(cmd.Context(), text)
			if err != nil && len(result.Added) == 0 {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rec := range result.Added {
				fmt.Fprintf(out, "%s✓ %s%s  %s / %s\n", colorGreen, rec.Code, colorReset,
					rec.PlayerNameOr("-"), rec.DeckNameOr("-"))
			}
			for _, code := range result.Duplicates {
				fmt.Fprintf(out, "%s↷ %s already added%s\n", colorYellow, code, colorReset)
			}
			for _, msg := range result.Errors {
				fmt.Fprintf(out, "%s✗ %s%s\n", colorRed, msg, colorReset)
			}
			fmt.Fprintf(out, "%s%s%s (%d lines in %s)\n", colorCyan, result.Message(), colorReset,
				result.Lines, time.Since(start).Round(time.Millisecond))

			if err != nil {
				return err
			}
			if result.Outcome() == bulk.OutcomeNone {
				return errors.New(result.Message())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print how each line parses without saving")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func previewImport(out io.Writer, text string) error {
	lines := parser.SplitLines(text)
	if len(lines) == 0 {
		return errors.New("no valid data found")
	}
	ok := 0
	for i, line := range lines {
		p := parser.ParseLine(line)
		if p.Code == "" {
			fmt.Fprintf(out, "%s✗ line %d: no deck code found%s\n", colorRed, i+1, colorReset)
			continue
		}
		ok++
		fmt.Fprintf(out, "%s• %s%s  %s / %s\n", colorGreen, p.Code, colorReset, deref(p.PlayerName), deref(p.DeckName))
	}
	fmt.Fprintf(out, "%s[dry-run] %d of %d lines would be added%s\n", colorYellow, ok, len(lines), colorReset)
	return nil
}

func newAddCmd(a *App) *cobra.Command {
	var player, deck string

	cmd := &cobra.Command{
		Use:   "add <code>",
		Short: "Add one deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd)
			if err != nil {
				return err
			}
			rec, err := session.AddSingle(cmd.Context(), args[0], player, deck)
			if rec.ID == "" {
				return err
			}
			if werr := writeDecks(cmd.OutOrStdout(), a.Format, []deckRow{toRow(session.URLs(), rec)}); werr != nil {
				return werr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player name")
	cmd.Flags().StringVar(&deck, "deck", "", "Deck name")
	return cmd
}

func newListCmd(a *App) *cobra.Command {
	var filter, sort, deck string
	var noDeckName bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd)
			if err != nil {
				return err
			}
			if err := session.SetSortOrder(decks.SortOrder(sort)); err != nil {
				return fmt.Errorf("invalid --sort %q (want newest, oldest, player or deck)", sort)
			}
			session.SetFilter(filter)
			switch {
			case noDeckName:
				session.SetDeckFilter(&decks.DeckSelection{Unset: true})
			case cmd.Flags().Changed("deck"):
				session.SetDeckFilter(&decks.DeckSelection{Name: deck})
			}

			visible := session.Visible()
			rows := make([]deckRow, 0, len(visible))
			for _, rec := range visible {
				rows = append(rows, toRow(session.URLs(), rec))
			}
			return writeDecks(cmd.OutOrStdout(), a.Format, rows)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only decks whose player or deck name contains this text")
	cmd.Flags().StringVar(&deck, "deck", "", "Only decks with exactly this deck name")
	cmd.Flags().BoolVar(&noDeckName, "no-deck-name", false, "Only decks without a deck name")
	cmd.MarkFlagsMutuallyExclusive("deck", "no-deck-name")
	cmd.Flags().StringVar(&sort, "sort", string(decks.SortNewest), "Order: newest, oldest, player or deck")
	return cmd
}

func newEditCmd(a *App) *cobra.Command {
	var player, deck string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the player or deck name of a deck (an empty value unsets it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edits []decks.Edit
			if cmd.Flags().Changed("player") {
				edits = append(edits, decks.SetPlayerName(player))
			}
			if cmd.Flags().Changed("deck") {
				edits = append(edits, decks.SetDeckName(deck))
			}
			if len(edits) == 0 {
				return errors.New("nothing to change: pass --player and/or --deck")
			}

			session, err := a.open(cmd)
			if err != nil {
				return err
			}
			found, err := session.Update(cmd.Context(), args[0], edits...)
			if !found {
				return fmt.Errorf("deck %s not found", args[0])
			}
			if err != nil {
				return err
			}
			rec, _ := session.Get(args[0])
			return writeDecks(cmd.OutOrStdout(), a.Format, []deckRow{toRow(session.URLs(), rec)})
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "New player name")
	cmd.Flags().StringVar(&deck, "deck", "", "New deck name")
	return cmd
}

func newRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove decks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var missing []string
			for _, id := range args {
				found, err := session.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !found {
					missing = append(missing, id)
					continue
				}
				fmt.Fprintf(out, "%s✓ removed %s%s\n", colorGreen, id, colorReset)
			}
			if len(missing) > 0 {
				return fmt.Errorf("not found: %v", missing)
			}
			return nil
		},
	}
}

func newClearCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			session, err := a.open(cmd)
			if err != nil {
				return err
			}
			n := len(session.Records())
			if err := session.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s✓ cleared %d decks%s\n", colorGreen, n, colorReset)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm")
	return cmd
}

func toRow(builder deckurl.Builder, rec models.DeckRecord) deckRow {
	urls := builder.Generate(rec.Code)
	return deckRow{
		ID:         rec.ID,
		Code:       rec.Code,
		PlayerName: deref(rec.PlayerName),
		DeckName:   deref(rec.DeckName),
		ImageURL:   rec.ImageURL,
		ConfirmURL: urls.Confirm,
		AddedAt:    rec.AddedAt.Local().Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
