package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CinePrep/cineprep/internal/domain"
)

const planColumns = `id, slug, name, price_monthly, max_analyses_per_month,
	max_audio_generations_per_month, features, created_at, updated_at`

type planRepository struct {
	systemDB *sql.DB
}

// NewPlanRepository creates a new PostgreSQL plan repository
func NewPlanRepository(db *sql.DB) domain.PlanRepository {
	return &planRepository{systemDB: db}
}

func scanPlan(row rowScanner) (*domain.Plan, error) {
	var plan domain.Plan
	err := row.Scan(
		&plan.ID,
		&plan.Slug,
		&plan.Name,
		&plan.PriceMonthly,
		&plan.MaxAnalysesPerMonth,
		&plan.MaxAudioGenerationsMonth,
		&plan.Features,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context) ([]*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans ORDER BY price_monthly ASC, slug ASC`
	rows, err := r.systemDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := []*domain.Plan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}
	return plans, nil
}

func (r *planRepository) GetBySlug(ctx context.Context, slug string) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE slug = $1`
	plan, err := scanPlan(r.systemDB.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "plan", ID: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

func (r *planRepository) Upsert(ctx context.Context, plan *domain.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO plans (id, slug, name, price_monthly, max_analyses_per_month,
			max_audio_generations_per_month, features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			price_monthly = EXCLUDED.price_monthly,
			max_analyses_per_month = EXCLUDED.max_analyses_per_month,
			max_audio_generations_per_month = EXCLUDED.max_audio_generations_per_month,
			features = EXCLUDED.features,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`
	err := r.systemDB.QueryRowContext(ctx, query,
		plan.ID,
		plan.Slug,
		plan.Name,
		plan.PriceMonthly,
		plan.MaxAnalysesPerMonth,
		plan.MaxAudioGenerationsMonth,
		plan.Features,
		now,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}
	return nil
}
