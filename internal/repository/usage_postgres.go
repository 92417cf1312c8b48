package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CinePrep/cineprep/internal/domain"
)

type usageRepository struct {
	systemDB *sql.DB
}

// NewUsageRepository creates a new PostgreSQL usage_tracking repository
func NewUsageRepository(db *sql.DB) domain.UsageRepository {
	return &usageRepository{systemDB: db}
}

func (r *usageRepository) GetOrCreate(ctx context.Context, userID string, periodStart, periodEnd time.Time) (*domain.Usage, error) {
	now := time.Now().UTC()
	_, err := r.systemDB.ExecContext(ctx, `
		INSERT INTO usage_tracking (id, user_id, period_start, period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, period_start) DO NOTHING
	`, uuid.New().String(), userID, periodStart, periodEnd, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage row: %w", err)
	}

	var usage domain.Usage
	err = r.systemDB.QueryRowContext(ctx, `
		SELECT id, user_id, period_start, period_end, analyses_count, audio_count,
			tokens_used, cost_usd, created_at, updated_at
		FROM usage_tracking
		WHERE user_id = $1 AND period_start = $2
	`, userID, periodStart).Scan(
		&usage.ID,
		&usage.UserID,
		&usage.PeriodStart,
		&usage.PeriodEnd,
		&usage.AnalysesCount,
		&usage.AudioCount,
		&usage.TokensUsed,
		&usage.CostUSD,
		&usage.CreatedAt,
		&usage.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage row: %w", err)
	}
	return &usage, nil
}

// Increment creates the period row when missing, so concurrent callers never
// lose an increment.
func (r *usageRepository) Increment(ctx context.Context, userID string, periodStart, periodEnd time.Time, delta domain.UsageDelta) error {
	now := time.Now().UTC()
	_, err := r.systemDB.ExecContext(ctx, `
		INSERT INTO usage_tracking (id, user_id, period_start, period_end,
			analyses_count, audio_count, tokens_used, cost_usd, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (user_id, period_start) DO UPDATE SET
			analyses_count = usage_tracking.analyses_count + EXCLUDED.analyses_count,
			audio_count = usage_tracking.audio_count + EXCLUDED.audio_count,
			tokens_used = usage_tracking.tokens_used + EXCLUDED.tokens_used,
			cost_usd = usage_tracking.cost_usd + EXCLUDED.cost_usd,
			updated_at = EXCLUDED.updated_at
	`,
		uuid.New().String(),
		userID,
		periodStart,
		periodEnd,
		delta.Analyses,
		delta.Audio,
		delta.Tokens,
		delta.CostUSD,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}
