package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

type QuotaServiceConfig struct {
	Memberships domain.MembershipRepository
	Plans       domain.PlanRepository
	Usage       domain.UsageRepository
	Logger      logger.Logger
	Now         func() time.Time
}

// QuotaService resolves the plan of a user and compares the counters of the
// current calendar month against its ceilings.
type QuotaService struct {
	memberships domain.MembershipRepository
	plans       domain.PlanRepository
	usage       domain.UsageRepository
	logger      logger.Logger
	now         func() time.Time
}

func NewQuotaService(cfg QuotaServiceConfig) *QuotaService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &QuotaService{
		memberships: cfg.Memberships,
		plans:       cfg.Plans,
		usage:       cfg.Usage,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}
}

var _ domain.QuotaService = (*QuotaService)(nil)

// PlanFor returns the active membership and its plan. Users without a current
// membership fall back to the free plan and a nil membership.
func (s *QuotaService) PlanFor(ctx context.Context, userID string) (*domain.Membership, *domain.Plan, error) {
	membership, plan, err := s.memberships.GetActive(ctx, userID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to get membership: %w", err)
		}
		membership = nil
	}
	if membership != nil && membership.IsCurrent(s.now()) {
		return membership, plan, nil
	}

	free, err := s.plans.GetBySlug(ctx, domain.PlanSlugFree)
	if err != nil {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to get free plan: %w", err)
		}
		s.logger.WithField("user_id", userID).Warn("Free plan row missing, using built-in limits")
		free = domain.FreePlan()
	}
	return nil, free, nil
}

func (s *QuotaService) currentUsage(ctx context.Context, userID string) (*domain.Usage, error) {
	start, end := domain.CurrentPeriod(s.now())
	usage, err := s.usage.GetOrCreate(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return usage, nil
}

func (s *QuotaService) Check(ctx context.Context, userID string, kind domain.UsageKind) (*domain.Plan, *domain.Usage, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "QuotaService", "Check")
	defer span.End()

	_, plan, err := s.PlanFor(ctx, userID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, nil, err
	}

	usage, err := s.currentUsage(ctx, userID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, nil, err
	}

	limit := plan.Limit(kind)
	if limit != domain.Unlimited && usage.Count(kind) >= limit {
		s.logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"kind":    string(kind),
			"limit":   limit,
			"plan":    plan.Slug,
		}).Info("Quota exceeded")
		return plan, usage, &domain.ErrQuotaExceeded{Resource: kind, Limit: limit, Used: usage.Count(kind)}
	}
	return plan, usage, nil
}

func (s *QuotaService) Record(ctx context.Context, userID string, delta domain.UsageDelta) error {
	ctx, span := tracing.StartServiceSpan(ctx, "QuotaService", "Record")
	defer span.End()

	start, end := domain.CurrentPeriod(s.now())
	if err := s.usage.Increment(ctx, userID, start, end, delta); err != nil {
		tracing.MarkSpanError(ctx, err)
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

func (s *QuotaService) Summary(ctx context.Context, userID string) (*domain.UsageSummary, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "QuotaService", "Summary")
	defer span.End()

	_, plan, err := s.PlanFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	usage, err := s.currentUsage(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(plan, usage), nil
}

func summarize(plan *domain.Plan, usage *domain.Usage) *domain.UsageSummary {
	analysesLimit := plan.Limit(domain.UsageKindAnalysis)
	audioLimit := plan.Limit(domain.UsageKindAudio)
	return &domain.UsageSummary{
		PeriodStart:       usage.PeriodStart,
		PeriodEnd:         usage.PeriodEnd,
		AnalysesUsed:      usage.AnalysesCount,
		AnalysesLimit:     analysesLimit,
		AnalysesRemaining: domain.Remaining(analysesLimit, usage.AnalysesCount),
		AudioUsed:         usage.AudioCount,
		AudioLimit:        audioLimit,
		AudioRemaining:    domain.Remaining(audioLimit, usage.AudioCount),
		TokensUsed:        usage.TokensUsed,
		EstimatedCostUSD:  usage.CostUSD,
		PlanSlug:          plan.Slug,
	}
}
