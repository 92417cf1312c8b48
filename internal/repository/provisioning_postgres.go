package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

type accountProvisioner struct {
	systemDB *sql.DB
	now      func() time.Time
}

// NewAccountProvisioner creates the PostgreSQL implementation of
// domain.AccountProvisioner
func NewAccountProvisioner(db *sql.DB) domain.AccountProvisioner {
	return &accountProvisioner{systemDB: db, now: time.Now}
}

// ProvisionFreeAccount runs every step as INSERT ... ON CONFLICT DO NOTHING in
// one transaction. Concurrent calls for the same user converge on one active
// membership and one usage row per period. created reports whether a new
// membership was inserted.
func (p *accountProvisioner) ProvisionFreeAccount(ctx context.Context, userID string) (bool, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "AccountProvisioner", "ProvisionFreeAccount")
	defer span.End()

	now := p.now().UTC()

	tx, err := p.systemDB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	planID, err := ensureFreePlan(ctx, tx, now)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return false, err
	}

	periodStart, periodEnd := domain.FreeMembershipWindow(now)
	result, err := tx.ExecContext(ctx, `
		INSERT INTO memberships (id, user_id, plan_id, status, billing_cycle,
			current_period_start, current_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id) WHERE status = 'active' DO NOTHING
	`,
		uuid.New().String(),
		userID,
		planID,
		domain.MembershipStatusActive,
		domain.BillingCycleYearly,
		periodStart,
		periodEnd,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to ensure membership: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	usageStart, usageEnd := domain.CurrentPeriod(now)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_tracking (id, user_id, period_start, period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, period_start) DO NOTHING
	`, uuid.New().String(), userID, usageStart, usageEnd, now)
	if err != nil {
		return false, fmt.Errorf("failed to ensure usage row: %w", err)
	}

	prefs := domain.DefaultPreferences(userID)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, language, tone, detail_level, theme,
			email_notifications, push_notifications, autoplay_audio, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO NOTHING
	`,
		prefs.UserID,
		prefs.Language,
		prefs.Tone,
		prefs.DetailLevel,
		prefs.Theme,
		prefs.EmailNotifications,
		prefs.PushNotifications,
		prefs.AutoplayAudio,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to ensure preferences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit provisioning: %w", err)
	}
	return inserted > 0, nil
}

func ensureFreePlan(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	plan := domain.FreePlan()
	features, err := json.Marshal(plan.Features)
	if err != nil {
		return "", fmt.Errorf("failed to marshal free plan features: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans (id, slug, name, price_monthly, max_analyses_per_month,
			max_audio_generations_per_month, features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (slug) DO NOTHING
	`,
		uuid.New().String(),
		plan.Slug,
		plan.Name,
		plan.PriceMonthly,
		plan.MaxAnalysesPerMonth,
		plan.MaxAudioGenerationsMonth,
		features,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to ensure free plan: %w", err)
	}

	var planID string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM plans WHERE slug = $1`, plan.Slug).Scan(&planID); err != nil {
		return "", fmt.Errorf("failed to get free plan: %w", err)
	}
	return planID, nil
}
