package http

import (
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

type FavoriteHandler struct {
	service domain.FavoriteService
	auth    Middleware
	logger  logger.Logger
}

func NewFavoriteHandler(service domain.FavoriteService, auth Middleware, logger logger.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *FavoriteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/favorites", chain(http.HandlerFunc(h.handleList), h.auth))
	mux.Handle("POST /api/favorites", chain(http.HandlerFunc(h.handleAdd), h.auth))
	mux.Handle("GET /api/favorites/{movieId}", chain(http.HandlerFunc(h.handleStatus), h.auth))
	mux.Handle("DELETE /api/favorites/{movieId}", chain(http.HandlerFunc(h.handleRemove), h.auth))
}

func (h *FavoriteHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", domain.DefaultHistoryLimit)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeServiceError(w, h.logger, "favorites.list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *FavoriteHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req domain.AddFavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	fav, err := h.service.Add(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, "favorites.add", err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

func (h *FavoriteHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	movieID, err := pathMovieID(r)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	isFavorite, err := h.service.IsFavorite(r.Context(), userID, movieID)
	if err != nil {
		writeServiceError(w, h.logger, "favorites.status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_favorite": isFavorite})
}

func (h *FavoriteHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	movieID, err := pathMovieID(r)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Remove(r.Context(), userID, movieID); err != nil {
		writeServiceError(w, h.logger, "favorites.remove", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
