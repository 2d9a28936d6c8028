package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/deckviewer/internal/apperr"
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/models"
)

// deckResponse adds the official detail page link to a record.
type deckResponse struct {
	models.DeckRecord
	ConfirmURL string `json:"confirmUrl"`
}

type deckListResponse struct {
	Decks  []deckResponse  `json:"decks"`
	Shown  int             `json:"shown"`
	Total  int             `json:"total"`
	Filter string          `json:"filter"`
	Sort   decks.SortOrder `json:"sort"`
}

type addDeckRequest struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
	DeckName   string `json:"deckName"`
}

type bulkRequest struct {
	Text string `json:"text"`
}

type bulkResponse struct {
	Added      []deckResponse `json:"added"`
	Duplicates []string       `json:"duplicates,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
	Lines      int            `json:"lines"`
	Outcome    string         `json:"outcome"`
	Message    string         `json:"message"`
}

// updateDeckRequest carries the editable fields. An absent field is left
// as it is; an empty string unsets it.
type updateDeckRequest struct {
	PlayerName *string `json:"playerName"`
	DeckName   *string `json:"deckName"`
}

func (s *Server) toResponse(rec models.DeckRecord) deckResponse {
	urls := s.session.URLs().Generate(rec.Code)
	return deckResponse{DeckRecord: rec, ConfirmURL: urls.Confirm}
}

func (s *Server) toResponses(records []models.DeckRecord) []deckResponse {
	out := make([]deckResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, s.toResponse(rec))
	}
	return out
}

// handleListDecks returns the visible list. ?all=true skips the filter.
func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	all := s.session.Records()
	shown := all
	if r.URL.Query().Get("all") != "true" {
		shown = s.session.Visible()
	}

	respondJSON(w, http.StatusOK, deckListResponse{
		Decks:  s.toResponses(shown),
		Shown:  len(shown),
		Total:  len(all),
		Filter: s.session.Filter(),
		Sort:   s.session.SortOrder(),
	})
}

// handleAddDeck adds one deck
func (s *Server) handleAddDeck(w http.ResponseWriter, r *http.Request) {
	var req addDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := s.session.AddSingle(r.Context(), req.Code, req.PlayerName, req.DeckName)
	if err != nil {
		if rec.ID != "" {
			respondAppError(w, err, s.toResponse(rec))
			return
		}
		respondAppError(w, err, nil)
		return
	}

	respondJSON(w, http.StatusCreated, s.toResponse(rec))
}

// handleBulkAdd processes bulk text. Line failures are part of a 200 body.
func (s *Server) handleBulkAdd(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.session.SubmitBulk(r.Context(), req.Text)
	resp := bulkResponse{
		Added:      s.toResponses(result.Added),
		Duplicates: result.Duplicates,
		Errors:     result.Errors,
		Lines:      result.Lines,
		Outcome:    string(result.Outcome()),
		Message:    result.Message(),
	}
	if err != nil {
		if _, ok := apperr.KindOf(err); !ok {
			// Interrupted by the client; nothing was added.
			respondError(w, http.StatusServiceUnavailable, apperr.MsgBulkProcessFailed)
			return
		}
		if len(result.Added) > 0 {
			respondAppError(w, err, resp)
			return
		}
		respondAppError(w, err, nil)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleClearDecks removes every deck
func (s *Server) handleClearDecks(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearAll(r.Context()); err != nil {
		respondAppError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetDeck returns a deck by ID
func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.session.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "Deck not found")
		return
	}
	respondJSON(w, http.StatusOK, s.toResponse(rec))
}

// handleUpdateDeck edits the player and deck names
func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var edits []decks.Edit
	if req.PlayerName != nil {
		edits = append(edits, decks.SetPlayerName(*req.PlayerName))
	}
	if req.DeckName != nil {
		edits = append(edits, decks.SetDeckName(*req.DeckName))
	}
	if len(edits) == 0 {
		respondError(w, http.StatusBadRequest, "playerName or deckName is required")
		return
	}

	found, err := s.session.Update(r.Context(), id, edits...)
	if !found {
		respondError(w, http.StatusNotFound, "Deck not found")
		return
	}
	rec, _ := s.session.Get(id)
	if err != nil {
		respondAppError(w, err, s.toResponse(rec))
		return
	}
	respondJSON(w, http.StatusOK, s.toResponse(rec))
}

// handleRemoveDeck removes a deck by ID
func (s *Server) handleRemoveDeck(w http.ResponseWriter, r *http.Request) {
	found, err := s.session.Remove(r.Context(), chi.URLParam(r, "id"))
	if !found {
		respondError(w, http.StatusNotFound, "Deck not found")
		return
	}
	if err != nil {
		respondAppError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
