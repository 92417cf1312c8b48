package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CinePrep/cineprep/internal/database/schema"
	"github.com/CinePrep/cineprep/internal/domain"
)

// InitializeDatabase creates all tables if they don't exist. Indexes are
// created by the migrations.
func InitializeDatabase(db *sql.DB) error {
	for _, query := range schema.TableDefinitions {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// EnsureFreePlan inserts the hardcoded free plan unless a row with the same
// slug exists.
func EnsureFreePlan(ctx context.Context, db *sql.DB) error {
	plan := domain.FreePlan()
	features, err := json.Marshal(plan.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal free plan features: %w", err)
	}

	now := time.Now().UTC()
	_, err = db.ExecContext(ctx, `
		INSERT INTO plans (id, slug, name, price_monthly, max_analyses_per_month,
			max_audio_generations_per_month, features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
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
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure free plan: %w", err)
	}
	return nil
}
