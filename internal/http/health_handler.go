package http

import (
	"context"
	"net/http"
	"time"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db             Pinger
	qwenConfigured bool
	version        string
	metrics        http.Handler
	logger         logger.Logger
	now            func() time.Time
}

func NewHealthHandler(db Pinger, qwenConfigured bool, version string, metrics http.Handler, logger logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:             db,
		qwenConfigured: qwenConfigured,
		version:        version,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

// handleHealth reports "degraded" with a 503 when the database is unreachable.
func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := domain.HealthStatus{
		Status:         "ok",
		Timestamp:      h.now().UTC(),
		Version:        h.version,
		QwenConfigured: h.qwenConfigured,
		Database:       "connected",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Health check database ping failed")
		status.Status = "degraded"
		status.Database = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
