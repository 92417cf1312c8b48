package http

import (
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

type AudioHandler struct {
	service   domain.AudioService
	auth      Middleware
	rateLimit Middleware
	logger    logger.Logger
}

func NewAudioHandler(service domain.AudioService, auth, rateLimit Middleware, logger logger.Logger) *AudioHandler {
	return &AudioHandler{
		service:   service,
		auth:      auth,
		rateLimit: rateLimit,
		logger:    logger,
	}
}

func (h *AudioHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/audio/generate", chain(http.HandlerFunc(h.handleGenerate), h.auth, h.rateLimit))
}

func (h *AudioHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req domain.GenerateAudioRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Generate(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, "audio.generate", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
