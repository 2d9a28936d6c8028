package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/meur/deckviewer/internal/config"
	"github.com/meur/deckviewer/internal/models"
	"github.com/meur/deckviewer/internal/storage"
)

// Seed files hold the raw values of a browser's storage keys, exported
// as-is.
const (
	deckListFile     = "deckList.json"
	viewSettingsFile = "viewSettings.json"
)

func main() {
	configPath := flag.String("config", "deckviewer.toml", "TOML config file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	seedsDir := flag.String("seeds", "./seeds", "Seeds directory")
	merge := flag.Bool("merge", false, "Keep stored decks and add seeded ones that are not stored yet")
	reset := flag.Bool("reset", false, "Delete stored decks and view settings before seeding")
	flag.Parse()

	if *reset && *merge {
		log.Fatal("-reset and -merge cannot be combined")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	store, err := storage.New(cfg.Storage.Path, cfg.Storage.QuotaBytes)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	target := storage.NewGateway(store, cfg.StorageKeys(), zap.NewNop())

	if *reset {
		if err := target.Clear(ctx); err != nil {
			log.Fatalf("Failed to reset storage: %v", err)
		}
		log.Println("✓ Cleared stored decks and view settings")
	}

	// Seed decks
	path := filepath.Join(*seedsDir, deckListFile)
	if n, err := seedDecks(ctx, target, cfg.StorageKeys(), path, *merge); err != nil {
		log.Printf("Warning: failed to seed %s: %v", deckListFile, err)
	} else {
		log.Printf("✓ Seeded %d decks from %s", n, deckListFile)
	}

	// Seed view settings
	path = filepath.Join(*seedsDir, viewSettingsFile)
	if settings, err := seedViewSettings(ctx, target, cfg.StorageKeys(), path); err != nil {
		log.Printf("Warning: failed to seed %s: %v", viewSettingsFile, err)
	} else {
		log.Printf("✓ Seeded view settings (%s, %s, %s)", settings.ViewMode, settings.CardSize, settings.ActiveTab)
	}

	log.Println("🌱 Seeding complete!")
}

// readSeed loads raw under key into a scratch gateway so the seed is
// decoded and sanitized exactly like stored data.
func readSeed(ctx context.Context, keys storage.Keys, key, path string) (*storage.Gateway, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scratch := &storage.MemoryKV{}
	if err := scratch.Set(ctx, key, string(data)); err != nil {
		return nil, err
	}
	return storage.NewGateway(scratch, keys, zap.NewNop()), nil
}

func seedDecks(ctx context.Context, target *storage.Gateway, keys storage.Keys, path string, merge bool) (int, error) {
	source, err := readSeed(ctx, keys, keys.DeckList, path)
	if err != nil {
		return 0, err
	}
	seeded, err := source.LoadDecks(ctx)
	if err != nil {
		return 0, err
	}

	records := seeded
	if merge {
		existing, err := target.LoadDecks(ctx)
		if err != nil {
			return 0, err
		}
		records = mergeDecks(existing, seeded)
	}
	if err := target.SaveDecks(ctx, records); err != nil {
		return 0, err
	}
	return len(seeded), nil
}

// mergeDecks puts seeded records not already stored ahead of the stored
// ones.
func mergeDecks(existing, seeded []models.DeckRecord) []models.DeckRecord {
	ids := make(map[string]bool, len(existing))
	for _, r := range existing {
		ids[r.ID] = true
	}
	out := make([]models.DeckRecord, 0, len(existing)+len(seeded))
	for _, r := range seeded {
		if !ids[r.ID] {
			out = append(out, r)
		}
	}
	return append(out, existing...)
}

func seedViewSettings(ctx context.Context, target *storage.Gateway, keys storage.Keys, path string) (models.ViewSettings, error) {
	source, err := readSeed(ctx, keys, keys.ViewSettings, path)
	if err != nil {
		return models.ViewSettings{}, err
	}
	settings, err := source.LoadViewSettings(ctx)
	if err != nil {
		return models.ViewSettings{}, err
	}
	return settings, target.SaveViewSettings(ctx, settings)
}
