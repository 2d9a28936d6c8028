// Package app owns the application state of one deck catalog: the record
// store, the filter, the view settings, the enlarged view and the UI status.
// Every user intent is a Session method, and every mutation of the record
// list is followed by one full-list save.
package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/meur/deckviewer/internal/apperr"
	"github.com/meur/deckviewer/internal/bulk"
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/deckurl"
	"github.com/meur/deckviewer/internal/modal"
	"github.com/meur/deckviewer/internal/models"
	"github.com/meur/deckviewer/internal/storage"
)

// ErrDeckNotFound is returned when an intent names a deck that is not in the
// list it applies to.
var ErrDeckNotFound = errors.New("deck not found")

// UIState is the status the rendering layer shows next to the list.
type UIState struct {
	Loading   bool           `json:"loading"`
	Error     string         `json:"error,omitempty"`
	ErrorKind apperr.Kind    `json:"errorKind,omitempty"`
	Message   string         `json:"message,omitempty"`
	Progress  *bulk.Progress `json:"progress,omitempty"`
}

// FormState holds the input fields of the add form.
type FormState struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
	DeckName   string `json:"deckName"`
	BulkInput  string `json:"bulkInput"`
	BulkMode   bool   `json:"bulkMode"`
}

// Options configures a Session.
type Options struct {
	RejectDuplicates bool
}

// Session coordinates the record store with persistence. It is safe for
// concurrent use; mutations are applied one at a time.
type Session struct {
	gateway   *storage.Gateway
	factory   *decks.Factory
	processor *bulk.Processor
	opts      Options
	logger    *zap.Logger

	// writeMu serializes mutations, including a whole bulk run, so saves
	// land in mutation order.
	writeMu sync.Mutex

	mu       sync.RWMutex
	store    *decks.Store
	modal    modal.Modal
	filter   string
	deck     *decks.DeckSelection
	order    decks.SortOrder
	settings models.ViewSettings
	ui       UIState
	form     FormState
}

// New creates an empty Session. Call Load to hydrate it from storage.
func New(gateway *storage.Gateway, factory *decks.Factory, processor *bulk.Processor, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		gateway:   gateway,
		factory:   factory,
		processor: processor,
		opts:      opts,
		logger:    logger,
		store:     decks.NewStore(nil),
		order:     decks.SortNewest,
		settings:  models.DefaultViewSettings(),
	}
}

// Load hydrates the deck list and view settings from storage. Failures leave
// an empty list or default settings in place; the first failure is returned
// and shown in the UI state.
func (s *Session) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, deckErr := s.gateway.LoadDecks(ctx)
	settings, settingsErr := s.gateway.LoadViewSettings(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.ReplaceAll(records)
	s.settings = settings
	s.revalidateLocked()

	s.logger.Info("Session loaded", zap.Int("decks", len(records)))
	for _, err := range []error{deckErr, settingsErr} {
		if err != nil {
			s.setErrorLocked(err)
			return err
		}
	}
	s.clearErrorLocked()
	return nil
}

// URLs returns the builder records derive their URLs from.
func (s *Session) URLs() deckurl.Builder {
	return s.factory.URLs()
}

// Records returns every record in store order.
func (s *Session) Records() []models.DeckRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Records()
}

// Get returns the record with the given id.
func (s *Session) Get(id string) (models.DeckRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(id)
}

// Visible returns the filtered, sorted list the UI displays.
func (s *Session) Visible() []models.DeckRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleLocked()
}

func (s *Session) visibleLocked() []models.DeckRecord {
	list := decks.Filter(s.store.Records(), s.filter)
	if s.deck != nil {
		list = decks.FilterByDeck(list, *s.deck)
	}
	return decks.Sort(list, s.order)
}

// Summary aggregates the whole list by deck name.
func (s *Session) Summary() []models.DeckNameSummaryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decks.AggregateByDeckName(s.store.Records())
}

// Filter returns the current filter text.
func (s *Session) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter changes the filter text. An open view is re-anchored on the new
// visible list.
func (s *Session) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = text
	s.revalidateLocked()
}

// DeckFilter returns the summary group the visible list is narrowed to.
func (s *Session) DeckFilter() (decks.DeckSelection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deck == nil {
		return decks.DeckSelection{}, false
	}
	return *s.deck, true
}

// SetDeckFilter narrows the visible list to one summary group, on top of
// the filter text. nil removes it.
func (s *Session) SetDeckFilter(sel *decks.DeckSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel != nil {
		copied := *sel
		sel = &copied
	}
	s.deck = sel
	s.revalidateLocked()
}

// SortOrder returns the current sort order.
func (s *Session) SortOrder() decks.SortOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order
}

// SetSortOrder changes the order of the visible list.
func (s *Session) SetSortOrder(order decks.SortOrder) error {
	if !order.Valid() {
		return apperr.New(apperr.KindValidation, "Unknown sort order").WithDetail("sort", string(order))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
	s.revalidateLocked()
	return nil
}

// UI returns the current UI state.
func (s *Session) UI() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ui := s.ui
	if ui.Progress != nil {
		p := *ui.Progress
		ui.Progress = &p
	}
	return ui
}

// DismissError clears the error shown in the UI state.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearErrorLocked()
}

// Form returns the add form.
func (s *Session) Form() FormState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form
}

// SetForm replaces the add form.
func (s *Session) SetForm(form FormState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
}

// AddSingle creates one record, puts it at the head of the list and saves.
// A blank code is a VALIDATION_ERROR. With duplicate rejection enabled an
// existing code is a DUPLICATE_ERROR. If the save fails the record stays in
// the list and the save error is returned.
func (s *Session) AddSingle(ctx context.Context, code, playerName, deckName string) (models.DeckRecord, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.clearErrorLocked()
	rec, ok := s.factory.Create(code, playerName, deckName)
	if !ok {
		err := apperr.New(apperr.KindValidation, apperr.MsgDeckCodeRequired)
		s.setErrorLocked(err)
		s.mu.Unlock()
		return models.DeckRecord{}, err
	}
	if s.opts.RejectDuplicates && s.store.ContainsCode(rec.Code) {
		err := apperr.New(apperr.KindDuplicate, apperr.MsgDeckCodeDuplicate).WithDetail("code", rec.Code)
		s.setErrorLocked(err)
		s.mu.Unlock()
		return models.DeckRecord{}, err
	}
	s.store.Prepend(rec)
	s.form.Code, s.form.PlayerName, s.form.DeckName = "", "", ""
	s.ui.Message = apperr.MsgDeckAdded
	s.revalidateLocked()
	records := s.store.Records()
	s.mu.Unlock()

	s.logger.Debug("Deck added", zap.String("id", rec.ID), zap.String("code", rec.Code))
	return rec, s.persist(ctx, records)
}

// SubmitBulk runs a bulk submission over text. Created records are put at
// the head of the list in input order and saved once. Progress is published
// in the UI state while lines are processed.
//
// Per-line failures do not fail the call; they are reported in the result.
// When every line produced a record the bulk input is cleared, otherwise the
// result message is shown as the UI error. Blank input returns a
// VALIDATION_ERROR. A cancelled ctx discards the batch.
func (s *Session) SubmitBulk(ctx context.Context, text string) (bulk.Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.clearErrorLocked()
	s.ui.Loading = true
	s.mu.Unlock()

	result, err := s.processor.Process(ctx, text, s.containsCode, s.setProgress)

	s.mu.Lock()
	s.ui.Loading = false
	s.ui.Progress = nil
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			s.setErrorLocked(err)
		}
		s.mu.Unlock()
		s.logger.Info("Bulk submission aborted", zap.Error(err))
		return bulk.Result{}, err
	}

	msg := result.Message()
	switch result.Outcome() {
	case bulk.OutcomeComplete:
		s.form.BulkInput = ""
		s.ui.Message = msg
	default:
		s.ui.Error = msg
		s.ui.ErrorKind = apperr.KindValidation
	}

	if len(result.Added) == 0 {
		s.mu.Unlock()
		return result, nil
	}
	s.store.Prepend(result.Added...)
	s.revalidateLocked()
	records := s.store.Records()
	s.mu.Unlock()

	s.logger.Info("Bulk submission finished",
		zap.String("outcome", string(result.Outcome())),
		zap.Int("added", len(result.Added)),
		zap.Int("errors", len(result.Errors)))
	return result, s.persist(ctx, records)
}

func (s *Session) containsCode(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ContainsCode(code)
}

func (s *Session) setProgress(p bulk.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.Progress = &p
}

// Update applies edits to the record with the given id and saves. It
// reports false, without saving, when no such record exists.
func (s *Session) Update(ctx context.Context, id string, edits ...decks.Edit) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.store.Update(id, edits...) {
		s.mu.Unlock()
		return false, nil
	}
	s.revalidateLocked()
	records := s.store.Records()
	s.mu.Unlock()

	return true, s.persist(ctx, records)
}

// Remove deletes the record with the given id and saves. It reports false,
// without saving, when no such record exists.
func (s *Session) Remove(ctx context.Context, id string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.store.Remove(id) {
		s.mu.Unlock()
		return false, nil
	}
	s.revalidateLocked()
	records := s.store.Records()
	s.mu.Unlock()

	s.logger.Debug("Deck removed", zap.String("id", id))
	return true, s.persist(ctx, records)
}

// ClearAll empties the list, resets the add form, the deck filter and the
// UI error, and saves.
func (s *Session) ClearAll(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.store.Clear()
	s.form = FormState{}
	s.clearErrorLocked()
	s.ui.Message = apperr.MsgAllDecksCleared
	s.deck = nil
	s.modal.Close()
	s.mu.Unlock()

	s.logger.Info("All decks cleared")
	return s.persist(ctx, []models.DeckRecord{})
}

// ViewSettings returns the display preferences.
func (s *Session) ViewSettings() models.ViewSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetViewSettings stores the display preferences. Unknown values fall back
// to their defaults.
func (s *Session) SetViewSettings(ctx context.Context, settings models.ViewSettings) (models.ViewSettings, error) {
	settings = settings.Normalize()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if err := s.gateway.SaveViewSettings(ctx, settings); err != nil {
		s.logger.Warn("Failed to save view settings", zap.Error(err))
		s.setError(err)
		return settings, err
	}
	return settings, nil
}

// Modal returns the image shown in the enlarged view.
func (s *Session) Modal() (modal.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modal.Current()
}

// OpenModal enlarges the record with the given id at its position in the
// visible list.
func (s *Session) OpenModal(id string) (modal.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.visibleLocked()
	for i, rec := range list {
		if rec.ID == id {
			s.modal.Open(rec, i)
			img, _ := s.modal.Current()
			return img, nil
		}
	}
	return modal.Image{}, ErrDeckNotFound
}

// NavigateModal steps the enlarged view over the visible list.
func (s *Session) NavigateModal(dir modal.Direction) (modal.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal.Navigate(dir, s.visibleLocked())
	return s.modal.Current()
}

// CloseModal closes the enlarged view.
func (s *Session) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal.Close()
}

// HandleKey applies a keyboard intent to the enlarged view and reports
// whether the key was consumed.
func (s *Session) HandleKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modal.HandleKey(key, s.visibleLocked())
}

// EditModal applies edit to the enlarged record and to the store, then
// saves. The view stays open on the same record when it still matches the
// filter.
func (s *Session) EditModal(ctx context.Context, edit decks.Edit) (modal.Image, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	id, ok := s.modal.UpdateField(edit)
	if !ok {
		s.mu.Unlock()
		return modal.Image{}, ErrDeckNotFound
	}
	if !s.store.Update(id, edit) {
		s.modal.Close()
		s.mu.Unlock()
		return modal.Image{}, ErrDeckNotFound
	}
	s.revalidateLocked()
	img, _ := s.modal.Current()
	records := s.store.Records()
	s.mu.Unlock()

	return img, s.persist(ctx, records)
}

// persist saves records. A failure is logged and shown in the UI state; the
// in-memory list is left as it is.
func (s *Session) persist(ctx context.Context, records []models.DeckRecord) error {
	if err := s.gateway.SaveDecks(ctx, records); err != nil {
		kind, _ := apperr.KindOf(err)
		s.logger.Warn("Failed to save decks",
			zap.String("kind", string(kind)),
			zap.Int("decks", len(records)),
			zap.Error(err))
		s.setError(err)
		return err
	}
	return nil
}

func (s *Session) revalidateLocked() {
	s.modal.Revalidate(s.visibleLocked())
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(err)
}

func (s *Session) setErrorLocked(err error) {
	s.ui.Error = apperr.UserMessage(err)
	s.ui.ErrorKind, _ = apperr.KindOf(err)
}

func (s *Session) clearErrorLocked() {
	s.ui.Error = ""
	s.ui.ErrorKind = ""
	s.ui.Message = ""
}
