package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-music-catalog/internal/model"
	"go-music-catalog/internal/service"
)

type PlaylistHandler struct {
	service *service.PlaylistService
}

func NewPlaylistHandler(service *service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{service: service}
}

func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.CreatePlaylistRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.service.Create(r.Context(), p.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, playlist, nil)
}

func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, playlist, nil)
}
