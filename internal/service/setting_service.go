package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

// SettingsService manages the user_preferences row of a user
type SettingsService struct {
	repo   domain.PreferencesRepository
	logger logger.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo domain.PreferencesRepository, logger logger.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger,
	}
}

var _ domain.SettingsService = (*SettingsService)(nil)

// Get returns the stored preferences, or the defaults when the user has none yet
func (s *SettingsService) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "SettingsService", "Get")
	defer span.End()

	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return domain.DefaultPreferences(userID), nil
		}
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return prefs, nil
}

// Update applies a partial update on top of the current preferences
func (s *SettingsService) Update(ctx context.Context, userID string, req domain.UpdatePreferencesRequest) (*domain.Preferences, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "SettingsService", "Update")
	defer span.End()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := req.Apply(current)
	updated.UserID = userID
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, updated); err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"language": updated.Language,
		"tone":     updated.Tone,
	}).Info("Preferences updated")
	return updated, nil
}
