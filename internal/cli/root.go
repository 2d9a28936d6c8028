// Package cli implements deckctl, the scriptable front end of the deck
// catalog.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meur/deckviewer/internal/app"
	"github.com/meur/deckviewer/internal/config"
	"github.com/meur/deckviewer/internal/storage"
)

// App carries global flags and the lazily opened session.
type App struct {
	ConfigPath string
	DBPath     string
	Format     string
	Debug      bool

	cfg     *config.Config
	logger  *zap.Logger
	session *app.Session
	store   *storage.Store
}

func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "deckctl",
		Short:        "Manage a deck catalog from the command line",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Add decks from a spreadsheet export (player<TAB>code<TAB>deck per line)
  deckctl import decks.tsv

  # Show decks of one archetype as YAML
  deckctl list --filter lugia --format yaml

  # Deck type breakdown
  deckctl summary

  # Browse interactively
  deckctl tui
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(a.ConfigPath)
		if err != nil {
			return err
		}
		if a.DBPath != "" {
			cfg.Storage.Path = a.DBPath
		}
		if a.Debug {
			cfg.App.Debug = true
		}
		a.cfg = cfg
		if a.logger == nil {
			logger, err := newLogger(cfg.App.Debug)
			if err != nil {
				return err
			}
			a.logger = logger
		}
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.close()
	}

	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", envOr("DECKVIEWER_CONFIG", "deckviewer.toml"), "TOML config file")
	cmd.PersistentFlags().StringVar(&a.DBPath, "db", envOr("DB_PATH", ""), "SQLite database path (overrides config)")
	cmd.PersistentFlags().StringVar(&a.Format, "format", envOr("DECKVIEWER_FORMAT", "table"), "Output format (table|json|yaml)")
	cmd.PersistentFlags().BoolVar(&a.Debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newAddCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newSummaryCmd(a))
	cmd.AddCommand(newEditCmd(a))
	cmd.AddCommand(newRemoveCmd(a))
	cmd.AddCommand(newClearCmd(a))
	cmd.AddCommand(newSettingsCmd(a))
	cmd.AddCommand(newTUICmd(a))

	return cmd
}

// open returns the session, opening and loading it on first use. A load
// failure is reported but leaves a usable empty session.
func (a *App) open(cmd *cobra.Command) (*app.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	session, store, err := app.Open(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	if err := session.Load(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%swarning: %v%s\n", colorYellow, err, colorReset)
	}
	a.session, a.store = session, store
	return session, nil
}

func (a *App) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store, a.session = nil, nil
	return err
}

// newLogger keeps command output clean: only warnings and errors are
// logged unless debug is set.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return app.NewLogger(true)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
