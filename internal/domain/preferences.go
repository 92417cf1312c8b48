package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_preferences_repository.go -package mocks github.com/CinePrep/cineprep/internal/domain PreferencesRepository
//go:generate mockgen -destination mocks/mock_settings_service.go -package mocks github.com/CinePrep/cineprep/internal/domain SettingsService

var (
	allowedLanguages    = map[string]bool{"en": true, "es": true, "fr": true, "de": true, "it": true, "pt": true, "ja": true, "zh": true}
	allowedTones        = map[string]bool{"neutral": true, "dramatic": true, "casual": true, "humorous": true}
	allowedDetailLevels = map[string]bool{"brief": true, "standard": true, "detailed": true}
	allowedThemes       = map[string]bool{"dark": true, "light": true, "system": true}
)

// Preferences is the user_preferences row.
type Preferences struct {
	UserID             string    `json:"user_id"`
	Language           string    `json:"language"`
	Tone               string    `json:"tone"`
	DetailLevel        string    `json:"detail_level"`
	Theme              string    `json:"theme"`
	EmailNotifications bool      `json:"email_notifications"`
	PushNotifications  bool      `json:"push_notifications"`
	AutoplayAudio      bool      `json:"autoplay_audio"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:             userID,
		Language:           "en",
		Tone:               "neutral",
		DetailLevel:        "standard",
		Theme:              "dark",
		EmailNotifications: true,
	}
}

func (p *Preferences) Validate() error {
	if p.UserID == "" {
		return NewValidationError("user_id is required")
	}
	if !allowedLanguages[p.Language] {
		return NewValidationError("unsupported language: " + p.Language)
	}
	if !allowedTones[p.Tone] {
		return NewValidationError("unsupported tone: " + p.Tone)
	}
	if !allowedDetailLevels[p.DetailLevel] {
		return NewValidationError("unsupported detail_level: " + p.DetailLevel)
	}
	if !allowedThemes[p.Theme] {
		return NewValidationError("unsupported theme: " + p.Theme)
	}
	return nil
}

// UpdatePreferencesRequest is a partial update; nil fields keep their value.
type UpdatePreferencesRequest struct {
	Language           *string `json:"language,omitempty"`
	Tone               *string `json:"tone,omitempty"`
	DetailLevel        *string `json:"detail_level,omitempty"`
	Theme              *string `json:"theme,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
	PushNotifications  *bool   `json:"push_notifications,omitempty"`
	AutoplayAudio      *bool   `json:"autoplay_audio,omitempty"`
}

// Apply returns a copy of p with the non-nil fields of r.
func (r UpdatePreferencesRequest) Apply(p *Preferences) *Preferences {
	out := *p
	if r.Language != nil {
		out.Language = *r.Language
	}
	if r.Tone != nil {
		out.Tone = *r.Tone
	}
	if r.DetailLevel != nil {
		out.DetailLevel = *r.DetailLevel
	}
	if r.Theme != nil {
		out.Theme = *r.Theme
	}
	if r.EmailNotifications != nil {
		out.EmailNotifications = *r.EmailNotifications
	}
	if r.PushNotifications != nil {
		out.PushNotifications = *r.PushNotifications
	}
	if r.AutoplayAudio != nil {
		out.AutoplayAudio = *r.AutoplayAudio
	}
	return &out
}

type PreferencesRepository interface {
	// Get returns ErrNotFound when the user has no row yet.
	Get(ctx context.Context, userID string) (*Preferences, error)
	Upsert(ctx context.Context, prefs *Preferences) error
}

type SettingsService interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
	Update(ctx context.Context, userID string, req UpdatePreferencesRequest) (*Preferences, error)
}
