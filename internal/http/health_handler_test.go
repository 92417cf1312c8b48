package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error {
	return p.err
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		mux := http.NewServeMux()
		NewHealthHandler(stubPinger{}, true, "1.2.0", nil, logger.NewTestLogger(t)).RegisterRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var status domain.HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, "connected", status.Database)
		assert.Equal(t, "1.2.0", status.Version)
		assert.True(t, status.QwenConfigured)
		assert.False(t, status.Timestamp.IsZero())
	})

	t.Run("database down", func(t *testing.T) {
		mux := http.NewServeMux()
		NewHealthHandler(stubPinger{err: errors.New("connection refused")}, false, "1.2.0", nil, logger.NewTestLogger(t)).RegisterRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
		assert.Contains(t, rec.Body.String(), `"database":"unreachable"`)
	})

	t.Run("metrics mounted", func(t *testing.T) {
		metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# HELP up"))
		})
		mux := http.NewServeMux()
		NewHealthHandler(stubPinger{}, true, "dev", metrics, logger.NewTestLogger(t)).RegisterRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "# HELP up", rec.Body.String())
	})
}
