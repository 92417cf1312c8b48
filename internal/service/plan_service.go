package service

import (
	"context"
	"fmt"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

type PlanService struct {
	repo   domain.PlanRepository
	logger logger.Logger
}

func NewPlanService(repo domain.PlanRepository, logger logger.Logger) *PlanService {
	return &PlanService{
		repo:   repo,
		logger: logger,
	}
}

var _ domain.PlanService = (*PlanService)(nil)

func (s *PlanService) List(ctx context.Context) ([]*domain.Plan, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "PlanService", "List")
	defer span.End()

	plans, err := s.repo.List(ctx)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if plans == nil {
		plans = []*domain.Plan{}
	}
	return plans, nil
}

// SeedDefaults upserts the free plan and the paid tiers, keyed by slug.
func (s *PlanService) SeedDefaults(ctx context.Context) ([]*domain.Plan, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "PlanService", "SeedDefaults")
	defer span.End()

	plans := append([]*domain.Plan{domain.FreePlan()}, domain.DefaultPaidPlans()...)
	for _, plan := range plans {
		if err := plan.Validate(); err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, plan); err != nil {
			tracing.MarkSpanError(ctx, err)
			return nil, fmt.Errorf("failed to seed plan %s: %w", plan.Slug, err)
		}
		s.logger.WithField("plan", plan.Slug).Info("Plan seeded")
	}
	return plans, nil
}
