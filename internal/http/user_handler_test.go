package http

import (
	"context"
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

func TestUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockUserServiceInterface(ctrl)
	mux := http.NewServeMux()
	NewUserHandler(svc, nil, logger.NewTestLogger(t)).RegisterRoutes(mux)

	t.Run("me", func(t *testing.T) {
		svc.EXPECT().GetOverview(gomock.Any(), "user-1").Return(&domain.AccountOverview{
			User: &domain.User{ID: "user-1", Email: "ada@example.com"},
			Plan: domain.FreePlan(),
		}, nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/user/me", nil), "user-1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ada@example.com"`)
		assert.Contains(t, rec.Body.String(), `"slug":"free"`)
	})

	t.Run("profile", func(t *testing.T) {
		svc.EXPECT().UpdateProfile(gomock.Any(), "user-1", gomock.Any()).
			Return(nil, domain.NewValidationError("display_name cannot be empty"))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPut, "/api/user/profile", strings.NewReader(`{"display_name":" "}`)), "user-1"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("usage", func(t *testing.T) {
		svc.EXPECT().GetUsage(gomock.Any(), "user-1").Return(&domain.UsageSummary{AnalysesUsed: 2, AnalysesLimit: 5, AnalysesRemaining: 3, PlanSlug: "free"}, nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/user/usage", nil), "user-1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"analyses_remaining":3`)
	})
}

func TestSettingsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockSettingsService(ctrl)
	mux := http.NewServeMux()
	NewSettingsHandler(svc, nil, logger.NewTestLogger(t)).RegisterRoutes(mux)

	svc.EXPECT().Get(gomock.Any(), "user-1").Return(domain.DefaultPreferences("user-1"), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/settings", nil), "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"detail_level":"standard"`)

	svc.EXPECT().Update(gomock.Any(), "user-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, userID string, req domain.UpdatePreferencesRequest) (*domain.Preferences, error) {
			require.NotNil(t, req.Tone)
			assert.Nil(t, req.Language)
			prefs := domain.DefaultPreferences(userID)
			prefs.Tone = *req.Tone
			return prefs, nil
		})
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"tone":"dramatic"}`)), "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tone":"dramatic"`)
}

func TestTasteHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockTasteService(ctrl)
	mux := http.NewServeMux()
	NewTasteHandler(svc, nil, logger.NewTestLogger(t)).RegisterRoutes(mux)

	svc.EXPECT().Profile(gomock.Any(), "user-1").Return(&domain.TasteProfile{UserID: "user-1", GenreWeights: domain.Weights{"Drama": 1}}, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/taste/profile", nil), "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Drama":1`)

	svc.EXPECT().Recommend(gomock.Any(), "user-1", gomock.Any()).Return([]*domain.Recommendation{{MovieID: 603, Score: 0.9}}, nil)
	rec = httptest.NewRecorder()
	body := `{"candidates":[{"id":603,"title":"The Matrix","genres":["Action"]}],"limit":5}`
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/taste/recommendations", strings.NewReader(body)), "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"movie_id":603`)

	svc.EXPECT().Recommendations(gomock.Any(), "user-1").Return([]*domain.Recommendation{}, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/taste/recommendations", nil), "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"recommendations":[]}`, rec.Body.String())
}

func TestPlanHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockPlanService(ctrl)
	mux := http.NewServeMux()
	NewPlanHandler(svc, logger.NewTestLogger(t)).RegisterRoutes(mux)

	svc.EXPECT().List(gomock.Any()).Return(append([]*domain.Plan{domain.FreePlan()}, domain.DefaultPaidPlans()...), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"premium"`)
}
