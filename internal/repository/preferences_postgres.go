package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CinePrep/cineprep/internal/domain"
)

type preferencesRepository struct {
	systemDB *sql.DB
}

// NewPreferencesRepository creates a new PostgreSQL user_preferences repository
func NewPreferencesRepository(db *sql.DB) domain.PreferencesRepository {
	return &preferencesRepository{systemDB: db}
}

func (r *preferencesRepository) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	var prefs domain.Preferences
	err := r.systemDB.QueryRowContext(ctx, `
		SELECT user_id, language, tone, detail_level, theme,
			email_notifications, push_notifications, autoplay_audio, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`, userID).Scan(
		&prefs.UserID,
		&prefs.Language,
		&prefs.Tone,
		&prefs.DetailLevel,
		&prefs.Theme,
		&prefs.EmailNotifications,
		&prefs.PushNotifications,
		&prefs.AutoplayAudio,
		&prefs.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "preferences", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &prefs, nil
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *domain.Preferences) error {
	prefs.UpdatedAt = time.Now().UTC()
	_, err := r.systemDB.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, language, tone, detail_level, theme,
			email_notifications, push_notifications, autoplay_audio, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			language = EXCLUDED.language,
			tone = EXCLUDED.tone,
			detail_level = EXCLUDED.detail_level,
			theme = EXCLUDED.theme,
			email_notifications = EXCLUDED.email_notifications,
			push_notifications = EXCLUDED.push_notifications,
			autoplay_audio = EXCLUDED.autoplay_audio,
			updated_at = EXCLUDED.updated_at
	`,
		prefs.UserID,
		prefs.Language,
		prefs.Tone,
		prefs.DetailLevel,
		prefs.Theme,
		prefs.EmailNotifications,
		prefs.PushNotifications,
		prefs.AutoplayAudio,
		prefs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
