package api

import (
	"net/http"

	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/modal"
)

type modalResponse struct {
	Open  bool         `json:"open"`
	Image *modal.Image `json:"image,omitempty"`
}

type openModalRequest struct {
	ID string `json:"id"`
}

type navigateRequest struct {
	Direction modal.Direction `json:"direction"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type editModalRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) modalState() modalResponse {
	img, ok := s.session.Modal()
	if !ok {
		return modalResponse{}
	}
	return modalResponse{Open: true, Image: &img}
}

// handleGetModal returns the enlarged view
func (s *Server) handleGetModal(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.modalState())
}

// handleOpenModal enlarges a deck from the visible list
func (s *Server) handleOpenModal(w http.ResponseWriter, r *http.Request) {
	var req openModalRequest
	if err := decodeJSON(r, &req); err != nil || req.ID == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if _, err := s.session.OpenModal(req.ID); err != nil {
		respondAppError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, s.modalState())
}

// handleNavigateModal steps to the previous or next deck
func (s *Server) handleNavigateModal(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Direction != modal.Prev && req.Direction != modal.Next {
		respondError(w, http.StatusBadRequest, "direction must be prev or next")
		return
	}

	s.session.NavigateModal(req.Direction)
	respondJSON(w, http.StatusOK, s.modalState())
}

// handleModalKey applies a keyboard intent
func (s *Server) handleModalKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	consumed := s.session.HandleKey(req.Key)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"consumed": consumed,
		"modal":    s.modalState(),
	})
}

// handleEditModal edits a name on the enlarged deck
func (s *Server) handleEditModal(w http.ResponseWriter, r *http.Request) {
	var req editModalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	edit, err := decks.ParseEdit(req.Field, req.Value)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.session.EditModal(r.Context(), edit); err != nil {
		respondAppError(w, err, s.modalState())
		return
	}
	respondJSON(w, http.StatusOK, s.modalState())
}

// handleCloseModal closes the enlarged view
func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	s.session.CloseModal()
	w.WriteHeader(http.StatusNoContent)
}
