package app

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meur/deckviewer/internal/bulk"
	"github.com/meur/deckviewer/internal/config"
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/storage"
)

// NewLogger builds the production logger, at debug level when debug is set.
func NewLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// FromConfig builds an unloaded Session over kv as cfg describes.
func FromConfig(cfg *config.Config, kv storage.KV, logger *zap.Logger) *Session {
	gateway := storage.NewGateway(kv, cfg.StorageKeys(), logger.Named("storage"))
	factory := decks.NewFactory(cfg.URLBuilder())
	processor := bulk.NewProcessor(factory, bulk.Options{
		Delay:            cfg.GetBulkDelay(),
		RejectDuplicates: cfg.Decks.RejectDuplicates,
	}, logger.Named("bulk"))
	return New(gateway, factory, processor, Options{RejectDuplicates: cfg.Decks.RejectDuplicates}, logger.Named("session"))
}

// Open opens the SQLite store cfg names and builds a Session over it. The
// caller loads the session and closes the store.
func Open(cfg *config.Config, logger *zap.Logger) (*Session, *storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	store, err := storage.New(cfg.Storage.Path, cfg.Storage.QuotaBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return FromConfig(cfg, store, logger), store, nil
}
