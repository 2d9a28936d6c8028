package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meur/deckviewer/internal/charts"
	"github.com/meur/deckviewer/internal/models"
	"github.com/meur/deckviewer/internal/tui"
)

func newSummaryCmd(a *App) *cobra.Command {
	var chartPath string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count decks by deck name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd)
			if err != nil {
				return err
			}
			items := session.Summary()

			if chartPath != "" {
				f, err := os.Create(chartPath)
				if err != nil {
					return fmt.Errorf("failed to create chart file: %w", err)
				}
				defer f.Close()
				if err := charts.RenderDeckNamePie(f, items, charts.DefaultChartConfig()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s✓ chart written to %s%s\n", colorGreen, chartPath, colorReset)
			}
			return writeSummary(cmd.OutOrStdout(), a.Format, items)
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "Also write an HTML pie chart to this path")
	return cmd
}

func newSettingsCmd(a *App) *cobra.Command {
	var viewMode, cardSize, tab string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the view settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd)
			if err != nil {
				return err
			}
			settings := session.ViewSettings()
			changed := false
			if cmd.Flags().Changed("view-mode") {
				if !models.ViewMode(viewMode).Valid() {
					return fmt.Errorf("invalid --view-mode %q (want grid or list)", viewMode)
				}
				settings.ViewMode, changed = models.ViewMode(viewMode), true
			}
			if cmd.Flags().Changed("card-size") {
				if !models.CardSize(cardSize).Valid() {
					return fmt.Errorf("invalid --card-size %q (want small, medium or large)", cardSize)
				}
				settings.CardSize, changed = models.CardSize(cardSize), true
			}
			if cmd.Flags().Changed("tab") {
				if !models.TabMode(tab).Valid() {
					return fmt.Errorf("invalid --tab %q (want deckList or summary)", tab)
				}
				settings.ActiveTab, changed = models.TabMode(tab), true
			}
			if changed {
				if settings, err = session.SetViewSettings(cmd.Context(), settings); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if done, err := writeStructured(out, a.Format, settings); done {
				return err
			}
			fmt.Fprintf(out, "view mode:  %s\ncard size:  %s\nactive tab: %s\n", settings.ViewMode, settings.CardSize, settings.ActiveTab)
			return nil
		},
	}

	cmd.Flags().StringVar(&viewMode, "view-mode", "", "grid or list")
	cmd.Flags().StringVar(&cardSize, "card-size", "", "small, medium or large")
	cmd.Flags().StringVar(&tab, "tab", "", "deckList or summary")
	return cmd
}

func newTUICmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the catalog interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), session)
		},
	}
}
