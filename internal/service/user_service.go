package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

type UserServiceConfig struct {
	Repository  domain.UserRepository
	Quota       domain.QuotaService
	Preferences domain.PreferencesRepository
	Logger      logger.Logger
}

type UserService struct {
	repo        domain.UserRepository
	quota       domain.QuotaService
	preferences domain.PreferencesRepository
	logger      logger.Logger
}

func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		repo:        cfg.Repository,
		quota:       cfg.Quota,
		preferences: cfg.Preferences,
		logger:      cfg.Logger,
	}
}

// Ensure UserService implements UserServiceInterface
var _ domain.UserServiceInterface = (*UserService)(nil)

// GetOverview loads the user, membership, plan, usage and preferences
// concurrently. Missing preferences fall back to the defaults.
func (s *UserService) GetOverview(ctx context.Context, userID string) (*domain.AccountOverview, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "UserService", "GetOverview")
	defer span.End()

	overview := &domain.AccountOverview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := s.repo.GetUserByID(gctx, userID)
		if err != nil {
			return err
		}
		overview.User = user
		return nil
	})

	g.Go(func() error {
		membership, plan, err := s.quota.PlanFor(gctx, userID)
		if err != nil {
			return err
		}
		overview.Membership = membership
		overview.Plan = plan
		return nil
	})

	g.Go(func() error {
		summary, err := s.quota.Summary(gctx, userID)
		if err != nil {
			return err
		}
		overview.Usage = &domain.Usage{
			UserID:        userID,
			PeriodStart:   summary.PeriodStart,
			PeriodEnd:     summary.PeriodEnd,
			AnalysesCount: summary.AnalysesUsed,
			AudioCount:    summary.AudioUsed,
			TokensUsed:    summary.TokensUsed,
			CostUSD:       summary.EstimatedCostUSD,
		}
		return nil
	})

	g.Go(func() error {
		prefs, err := s.preferences.Get(gctx, userID)
		if err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				overview.Preferences = domain.DefaultPreferences(userID)
				return nil
			}
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		overview.Preferences = prefs
		return nil
	})

	if err := g.Wait(); err != nil {
		tracing.MarkSpanError(ctx, err)
		s.logger.WithField("user_id", userID).WithField("error", err.Error()).Error("Failed to load account overview")
		return nil, err
	}
	return overview, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "UserService", "UpdateProfile")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateProfile(ctx, userID, req)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	s.logger.WithField("user_id", userID).Info("Profile updated")
	return user, nil
}

func (s *UserService) GetUsage(ctx context.Context, userID string) (*domain.UsageSummary, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "UserService", "GetUsage")
	defer span.End()

	summary, err := s.quota.Summary(ctx, userID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	return summary, nil
}
