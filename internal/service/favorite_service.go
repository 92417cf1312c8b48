package service

import (
	"context"
	"fmt"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

type FavoriteService struct {
	repo   domain.FavoriteRepository
	logger logger.Logger
}

func NewFavoriteService(repo domain.FavoriteRepository, logger logger.Logger) *FavoriteService {
	return &FavoriteService{
		repo:   repo,
		logger: logger,
	}
}

var _ domain.FavoriteService = (*FavoriteService)(nil)

// NormalizePage clamps a limit/offset pair to the API bounds.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	if limit > domain.MaxHistoryLimit {
		limit = domain.MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *FavoriteService) List(ctx context.Context, userID string, limit, offset int) (*domain.FavoriteList, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "FavoriteService", "List")
	defer span.End()

	limit, offset = NormalizePage(limit, offset)
	favorites, total, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if favorites == nil {
		favorites = []*domain.Favorite{}
	}
	return &domain.FavoriteList{Favorites: favorites, Total: total}, nil
}

func (s *FavoriteService) Add(ctx context.Context, userID string, req domain.AddFavoriteRequest) (*domain.Favorite, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "FavoriteService", "Add")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	tracing.AddAttribute(ctx, "movie_id", req.MovieID)

	fav, err := s.repo.Add(ctx, req.ToFavorite(userID))
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		s.logger.WithField("user_id", userID).WithField("error", err.Error()).Error("Failed to add favorite")
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return fav, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID string, movieID int) error {
	ctx, span := tracing.StartServiceSpan(ctx, "FavoriteService", "Remove")
	defer span.End()

	if movieID <= 0 {
		return domain.NewValidationError("movie id is required")
	}
	if err := s.repo.Remove(ctx, userID, movieID); err != nil {
		tracing.MarkSpanError(ctx, err)
		return err
	}
	return nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID string, movieID int) (bool, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "FavoriteService", "IsFavorite")
	defer span.End()

	if movieID <= 0 {
		return false, domain.NewValidationError("movie id is required")
	}
	ok, err := s.repo.Exists(ctx, userID, movieID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return ok, nil
}
