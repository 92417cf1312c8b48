package http

import (
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

func TestAudioHandler_Generate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockAudioService(ctrl)
	mux := http.NewServeMux()
	NewAudioHandler(svc, nil, nil, logger.NewTestLogger(t)).RegisterRoutes(mux)

	svc.EXPECT().Generate(gomock.Any(), "user-1", domain.GenerateAudioRequest{Narrative: "Previously...", MovieTitle: "Dune"}).
		Return(&domain.AudioResult{AudioURL: "https://cdn.example.com/a.wav", Format: domain.AudioFormatWAV, Voice: "Cherry", Characters: 13, MovieTitle: "Dune", Remaining: 2}, nil)

	rec := httptest.NewRecorder()
	body := `{"narrative":"Previously...","movieTitle":"Dune"}`
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/audio/generate", strings.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"audio_url": "https://cdn.example.com/a.wav",
		"format": "wav",
		"voice": "Cherry",
		"characters": 13,
		"truncated": false,
		"movie_title": "Dune",
		"remaining_audio": 2
	}`, rec.Body.String())

	svc.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &domain.ErrUpstream{Service: "tts", StatusCode: 500, Err: assert.AnError})
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/audio/generate", strings.NewReader(body)), "user-1"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
