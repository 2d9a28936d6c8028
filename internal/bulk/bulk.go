// Package bulk turns multi-line bulk input into new deck records.
//
// Lines are handled strictly one at a time in input order. Between lines the
// processor waits for a short, fixed interval so a progress display can
// repaint; the wait honors context cancellation.
package bulk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/meur/deckviewer/internal/apperr"
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/models"
	"github.com/meur/deckviewer/internal/parser"
)

// DefaultDelay is the pause between two lines.
const DefaultDelay = 100 * time.Millisecond

// Progress reports how many lines have been started out of Total.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Options configures a Processor.
type Options struct {
	// Delay between lines. Zero disables pacing.
	Delay time.Duration
	// RejectDuplicates skips lines whose code already exists in the store or
	// earlier in the same batch. Duplicates are allowed by default.
	RejectDuplicates bool
}

// Processor runs bulk submissions.
type Processor struct {
	factory *decks.Factory
	opts    Options
	logger  *zap.Logger
}

// NewProcessor creates a Processor that builds records with factory.
func NewProcessor(factory *decks.Factory, opts Options, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{factory: factory, opts: opts, logger: logger}
}

// Outcome classifies a finished batch.
type Outcome string

const (
	// OutcomeComplete means every line produced a record.
	OutcomeComplete Outcome = "complete"
	// OutcomePartial means some lines produced records and some did not.
	OutcomePartial Outcome = "partial"
	// OutcomeNone means no line produced a record.
	OutcomeNone Outcome = "none"
)

// Result collects what a batch produced.
type Result struct {
	// Added holds the new records in parse order.
	Added []models.DeckRecord `json:"added"`
	// Duplicates holds codes skipped under RejectDuplicates.
	Duplicates []string `json:"duplicates,omitempty"`
	// Errors holds one message per rejected line.
	Errors []string `json:"errors,omitempty"`
	// Lines is the number of non-blank input lines.
	Lines int `json:"lines"`
}

// Outcome classifies r.
func (r Result) Outcome() Outcome {
	skipped := len(r.Errors) + len(r.Duplicates)
	switch {
	case len(r.Added) == 0:
		return OutcomeNone
	case skipped > 0:
		return OutcomePartial
	default:
		return OutcomeComplete
	}
}

// Message summarizes r for display.
func (r Result) Message() string {
	var parts []string
	if n := len(r.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added.", n))
	}
	if n := len(r.Duplicates); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped as already added.", n))
	}
	if n := len(r.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed.", n))
	}
	if len(parts) == 0 {
		return apperr.MsgBulkNoDecksAdded
	}
	return strings.Join(parts, " ")
}

// Process parses text and creates a record for every line with a code.
// exists reports whether a code is already stored; it is consulted only
// under RejectDuplicates and may be nil. progress, if non-nil, is called
// before each line.
//
// Blank input returns a VALIDATION_ERROR. If ctx is cancelled the partial
// result is discarded and ctx's error is returned.
func (p *Processor) Process(ctx context.Context, text string, exists func(code string) bool, progress func(Progress)) (Result, error) {
	lines := parser.SplitLines(text)
	if len(lines) == 0 {
		return Result{}, apperr.New(apperr.KindValidation, apperr.MsgBulkNoData)
	}

	limit := rate.Inf
	if p.opts.Delay > 0 {
		limit = rate.Every(p.opts.Delay)
	}
	pacer := rate.NewLimiter(limit, 1)

	result := Result{Lines: len(lines)}
	batchCodes := make(map[string]bool)

	for i, line := range lines {
		if err := pacer.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("bulk processing interrupted at line %d: %w", i+1, ctxErr(ctx, err))
		}
		if progress != nil {
			progress(Progress{Current: i + 1, Total: len(lines)})
		}

		parsed := parser.ParseLine(line)
		if parsed.Code == "" {
			p.logger.Debug("Bulk line without deck code", zap.Int("line", i+1))
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: no deck code found", i+1))
			continue
		}

		if p.opts.RejectDuplicates && (batchCodes[parsed.Code] || (exists != nil && exists(parsed.Code))) {
			p.logger.Debug("Bulk line duplicates an existing deck", zap.Int("line", i+1), zap.String("code", parsed.Code))
			result.Duplicates = append(result.Duplicates, parsed.Code)
			continue
		}

		rec, ok := p.factory.FromParsed(parsed)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: no deck code found", i+1))
			continue
		}
		batchCodes[rec.Code] = true
		result.Added = append(result.Added, rec)
	}

	p.logger.Debug("Bulk batch processed",
		zap.Int("lines", result.Lines),
		zap.Int("added", len(result.Added)),
		zap.Int("duplicates", len(result.Duplicates)),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

// ctxErr prefers the context's own error over the limiter's wording.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
