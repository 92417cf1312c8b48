package client

import (
	"context"
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
)

type Settings struct {
	c *Client
}

func (s *Settings) Get(ctx context.Context) (*domain.Preferences, error) {
	var prefs domain.Preferences
	if err := s.c.do(ctx, http.MethodGet, "/api/settings", nil, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (s *Settings) Update(ctx context.Context, req domain.UpdatePreferencesRequest) (*domain.Preferences, error) {
	var prefs domain.Preferences
	if err := s.c.do(ctx, http.MethodPut, "/api/settings", req, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}
