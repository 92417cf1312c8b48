package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/domain/mocks"
	"github.com/CinePrep/cineprep/pkg/logger"
)

func setupLoreHandlerTest(t *testing.T) (*mocks.MockLoreService, *http.ServeMux) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	svc := mocks.NewMockLoreService(ctrl)
	mux := http.NewServeMux()
	NewLoreHandler(svc, nil, nil, logger.NewTestLogger(t)).RegisterRoutes(mux)
	return svc, mux
}

const loreBody = `{"currentMovie":{"id":299534,"title":"Avengers: Endgame","release_date":"2019-04-24"},"previousMovies":[{"id":24428,"title":"The Avengers"}]}`

func TestLoreHandler_Generate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, mux := setupLoreHandlerTest(t)
		svc.EXPECT().Generate(gomock.Any(), "user-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, req domain.GenerateLoreRequest) (*domain.GenerateLoreResponse, error) {
				assert.Equal(t, 299534, req.CurrentMovie.ID)
				require.Len(t, req.PreviousMovies, 1)
				return &domain.GenerateLoreResponse{
					ID:        "analysis-1",
					Analysis:  &domain.LoreDocument{MovieID: 299534, RequiredMovies: []domain.RequiredMovie{{MovieID: 24428, Title: "The Avengers"}}},
					Model:     "qwen-plus",
					Remaining: 4,
				}, nil
			})

		req := withUser(httptest.NewRequest(http.MethodPost, "/api/lore/generate", strings.NewReader(loreBody)), "user-1")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp domain.GenerateLoreResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "analysis-1", resp.ID)
		assert.Equal(t, 4, resp.Remaining)
		assert.Len(t, resp.Analysis.RequiredMovies, 1)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		svc, mux := setupLoreHandlerTest(t)
		svc.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &domain.ErrQuotaExceeded{Resource: domain.UsageKindAnalysis, Limit: 5, Used: 5})

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/lore/generate", strings.NewReader(loreBody)), "user-1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, mux := setupLoreHandlerTest(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/lore/generate", strings.NewReader("{")), "user-1"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, mux := setupLoreHandlerTest(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/lore/generate", strings.NewReader(loreBody)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoreHandler_History(t *testing.T) {
	svc, mux := setupLoreHandlerTest(t)
	svc.EXPECT().History(gomock.Any(), "user-1", domain.ListHistoryRequest{Limit: 10, Offset: 20}).
		Return(&domain.LoreHistory{Analyses: []*domain.LoreAnalysisSummary{}, Total: 21, Limit: 10, Offset: 20}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/lore/history?limit=10&offset=20", nil), "user-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"analyses":[],"total":21,"limit":10,"offset":20}`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/lore/history?limit=ten", nil), "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoreHandler_GetAndDelete(t *testing.T) {
	svc, mux := setupLoreHandlerTest(t)

	svc.EXPECT().Get(gomock.Any(), "user-1", "analysis-1").Return(&domain.LoreAnalysis{ID: "analysis-1", MovieID: 299534}, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/lore/analysis-1", nil), "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"analysis-1"`)

	svc.EXPECT().Get(gomock.Any(), "user-1", "someone-elses").Return(nil, &domain.ErrNotFound{Entity: "analysis", ID: "someone-elses"})
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/lore/someone-elses", nil), "user-1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.EXPECT().Delete(gomock.Any(), "user-1", "analysis-1").Return(nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodDelete, "/api/lore/analysis-1", nil), "user-1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
