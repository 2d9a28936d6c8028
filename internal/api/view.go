package api

import (
	"bytes"
	"net/http"

	"github.com/meur/deckviewer/internal/app"
	"github.com/meur/deckviewer/internal/charts"
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/modal"
	"github.com/meur/deckviewer/internal/models"
)

type stateResponse struct {
	UI       app.UIState          `json:"ui"`
	Form     app.FormState        `json:"form"`
	Filter   string               `json:"filter"`
	Deck     *decks.DeckSelection `json:"deck"`
	Sort     decks.SortOrder      `json:"sort"`
	Settings models.ViewSettings  `json:"settings"`
	Modal    *modal.Image         `json:"modal"`
	Total    int                  `json:"total"`
}

// viewRequest changes only the fields it carries. ClearDeck drops the deck
// group selection.
type viewRequest struct {
	Filter    *string              `json:"filter"`
	Deck      *decks.DeckSelection `json:"deck"`
	ClearDeck bool                 `json:"clearDeck"`
	Sort      *decks.SortOrder     `json:"sort"`
}

// handleSummary returns deck counts grouped by deck name
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.session.Summary())
}

// handleSummaryChart returns the summary as an HTML pie chart
func (s *Server) handleSummaryChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := charts.RenderDeckNamePie(&buf, s.session.Summary(), s.opts.Chart); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleGetState returns everything the UI renders besides the list itself
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.state())
}

func (s *Server) state() stateResponse {
	resp := stateResponse{
		UI:       s.session.UI(),
		Form:     s.session.Form(),
		Filter:   s.session.Filter(),
		Sort:     s.session.SortOrder(),
		Settings: s.session.ViewSettings(),
		Total:    len(s.session.Records()),
	}
	if sel, ok := s.session.DeckFilter(); ok {
		resp.Deck = &sel
	}
	if img, ok := s.session.Modal(); ok {
		resp.Modal = &img
	}
	return resp
}

// handleSetView changes the filter text, the deck group and the sort order
func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Sort != nil {
		if err := s.session.SetSortOrder(*req.Sort); err != nil {
			respondAppError(w, err, nil)
			return
		}
	}
	if req.Filter != nil {
		s.session.SetFilter(*req.Filter)
	}
	switch {
	case req.ClearDeck:
		s.session.SetDeckFilter(nil)
	case req.Deck != nil:
		s.session.SetDeckFilter(req.Deck)
	}

	respondJSON(w, http.StatusOK, s.state())
}

// handleSetForm stores the add form so it survives a reload
func (s *Server) handleSetForm(w http.ResponseWriter, r *http.Request) {
	var form app.FormState
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.session.SetForm(form)
	respondJSON(w, http.StatusOK, form)
}

// handleDismissError clears the displayed error
func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
	s.session.DismissError()
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSettings returns the view settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.session.ViewSettings())
}

// handlePutSettings replaces the view settings
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req models.ViewSettings
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := s.session.SetViewSettings(r.Context(), req)
	if err != nil {
		respondAppError(w, err, settings)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
