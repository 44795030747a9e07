package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-music-catalog/internal/model"
	"go-music-catalog/internal/service"
	"go-music-catalog/pkg/apierror"
)

type SongHandler struct {
	service *service.SongService
}

func NewSongHandler(service *service.SongService) *SongHandler {
	return &SongHandler{service: service}
}

type songMessage struct {
	Message string      `json:"message"`
	Song    *model.Song `json:"song,omitempty"`
}

func (h *SongHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateSongRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	song, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, songMessage{Message: "Song created successfully", Song: &song}, nil)
}

func (h *SongHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, err)
		return
	}

	songs, meta, err := h.service.List(r.Context(), model.SongQuery{Page: page, Limit: limit})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.SongList{Items: songs}, meta)
}

func (h *SongHandler) Get(w http.ResponseWriter, r *http.Request) {
	song, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, song, nil)
}

func (h *SongHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateSongRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	song, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, songMessage{Message: "Song updated successfully", Song: &song}, nil)
}

func (h *SongHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, songMessage{Message: fmt.Sprintf("Song with ID %s deleted successfully", id)}, nil)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apierror.BadRequest(fmt.Sprintf("%s must be a positive integer", key), key)
	}
	return v, nil
}
