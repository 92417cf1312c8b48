package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CinePrep/cineprep/internal/domain"
)

type membershipRepository struct {
	systemDB *sql.DB
}

// NewMembershipRepository creates a new PostgreSQL membership repository
func NewMembershipRepository(db *sql.DB) domain.MembershipRepository {
	return &membershipRepository{systemDB: db}
}

func (r *membershipRepository) GetActive(ctx context.Context, userID string) (*domain.Membership, *domain.Plan, error) {
	query := `
		SELECT m.id, m.user_id, m.plan_id, m.status, m.billing_cycle,
			m.current_period_start, m.current_period_end, m.created_at, m.updated_at,
			p.id, p.slug, p.name, p.price_monthly, p.max_analyses_per_month,
			p.max_audio_generations_per_month, p.features, p.created_at, p.updated_at
		FROM memberships m
		JOIN plans p ON p.id = m.plan_id
		WHERE m.user_id = $1 AND m.status = 'active'
		ORDER BY m.created_at DESC
		LIMIT 1
	`

	var membership domain.Membership
	var plan domain.Plan
	err := r.systemDB.QueryRowContext(ctx, query, userID).Scan(
		&membership.ID,
		&membership.UserID,
		&membership.PlanID,
		&membership.Status,
		&membership.BillingCycle,
		&membership.CurrentPeriodStart,
		&membership.CurrentPeriodEnd,
		&membership.CreatedAt,
		&membership.UpdatedAt,
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
	if err == sql.ErrNoRows {
		return nil, nil, &domain.ErrNotFound{Entity: "membership", ID: userID}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active membership: %w", err)
	}
	return &membership, &plan, nil
}
