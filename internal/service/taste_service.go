package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

const (
	// tasteHalfLife is the age at which a favorite counts half as much.
	tasteHalfLife = 180 * 24 * time.Hour

	genreScoreWeight  = 0.6
	decadeScoreWeight = 0.25
	ratingScoreWeight = 0.15
)

type TasteServiceConfig struct {
	Favorites domain.FavoriteRepository
	Repo      domain.TasteRepository
	Logger    logger.Logger
	Now       func() time.Time
}

// TasteService derives a weighted taste profile from the favorites of a user
// and ranks candidate movies against it.
type TasteService struct {
	favorites domain.FavoriteRepository
	repo      domain.TasteRepository
	logger    logger.Logger
	now       func() time.Time
}

func NewTasteService(cfg TasteServiceConfig) *TasteService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TasteService{
		favorites: cfg.Favorites,
		repo:      cfg.Repo,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

var _ domain.TasteService = (*TasteService)(nil)

// Profile recomputes the profile from the current favorites and persists it.
func (s *TasteService) Profile(ctx context.Context, userID string) (*domain.TasteProfile, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "TasteService", "Profile")
	defer span.End()

	profile, _, err := s.refresh(ctx, userID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	return profile, nil
}

func (s *TasteService) refresh(ctx context.Context, userID string) (*domain.TasteProfile, []*domain.Favorite, error) {
	favorites, err := s.favorites.ListAll(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	profile := BuildTasteProfile(userID, favorites, s.now())
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, nil, fmt.Errorf("failed to save taste profile: %w", err)
	}
	return profile, favorites, nil
}

// BuildTasteProfile weights each favorite by an exponential decay on its age, then
// normalises genre and decade weights so the strongest label is 1.
func BuildTasteProfile(userID string, favorites []*domain.Favorite, now time.Time) *domain.TasteProfile {
	genres := domain.Weights{}
	decades := domain.Weights{}
	var ratingSum float64
	var rated int

	for _, fav := range favorites {
		w := recencyWeight(fav.CreatedAt, now)
		for _, g := range fav.Genres {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			genres[g] += w
		}
		if d := decadeLabel(fav.ReleaseYear); d != "" {
			decades[d] += w
		}
		if fav.VoteAverage > 0 {
			ratingSum += fav.VoteAverage
			rated++
		}
	}

	profile := &domain.TasteProfile{
		UserID:         userID,
		GenreWeights:   normalizeWeights(genres),
		DecadeWeights:  normalizeWeights(decades),
		FavoritesCount: len(favorites),
		UpdatedAt:      now.UTC(),
	}
	if rated > 0 {
		profile.AverageRating = round2(ratingSum / float64(rated))
	}
	return profile
}

func recencyWeight(created, now time.Time) float64 {
	if created.IsZero() || !created.Before(now) {
		return 1
	}
	age := now.Sub(created)
	return math.Pow(0.5, float64(age)/float64(tasteHalfLife))
}

func decadeLabel(year int) string {
	if year <= 0 {
		return ""
	}
	return fmt.Sprintf("%ds", year/10*10)
}

func normalizeWeights(w domain.Weights) domain.Weights {
	var top float64
	for _, v := range w {
		if v > top {
			top = v
		}
	}
	out := domain.Weights{}
	if top == 0 {
		return out
	}
	for k, v := range w {
		out[k] = round2(v / top)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recommend ranks the candidates against a fresh profile, skipping movies the
// user already favorited, and replaces the stored recommendations with the top
// req.Limit entries.
func (s *TasteService) Recommend(ctx context.Context, userID string, req domain.RecommendRequest) ([]*domain.Recommendation, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "TasteService", "Recommend")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile, favorites, err := s.refresh(ctx, userID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	owned := make(map[int]bool, len(favorites))
	for _, fav := range favorites {
		owned[fav.MovieID] = true
	}

	seen := map[int]bool{}
	recs := make([]*domain.Recommendation, 0, len(req.Candidates))
	now := s.now().UTC()
	for _, movie := range req.Candidates {
		if owned[movie.ID] || seen[movie.ID] {
			continue
		}
		seen[movie.ID] = true

		score, reasons := ScoreCandidate(profile, movie)
		recs = append(recs, &domain.Recommendation{
			UserID:    userID,
			MovieID:   movie.ID,
			Title:     strings.TrimSpace(movie.Title),
			Score:     score,
			Reasons:   reasons,
			CreatedAt: now,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].MovieID < recs[j].MovieID
	})
	if len(recs) > req.Limit {
		recs = recs[:req.Limit]
	}

	if err := s.repo.ReplaceRecommendations(ctx, userID, recs); err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to save recommendations: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"candidates": len(req.Candidates),
		"stored":     len(recs),
	}).Debug("Recommendations refreshed")
	return recs, nil
}

// ScoreCandidate returns a score in [0,1] from genre overlap, decade affinity
// and rating proximity, with a human readable reason per signal that fired.
func ScoreCandidate(profile *domain.TasteProfile, movie domain.Movie) (float64, []string) {
	reasons := []string{}

	var genreScore float64
	var bestGenre string
	var bestWeight float64
	if len(movie.Genres) > 0 {
		for _, g := range movie.Genres {
			w := profile.GenreWeights[strings.TrimSpace(g)]
			genreScore += w
			if w > bestWeight {
				bestGenre, bestWeight = strings.TrimSpace(g), w
			}
		}
		genreScore /= float64(len(movie.Genres))
	}
	if bestGenre != "" {
		reasons = append(reasons, fmt.Sprintf("You often favorite %s movies", bestGenre))
	}

	var decadeScore float64
	if d := decadeLabel(movie.ReleaseYear()); d != "" {
		decadeScore = profile.DecadeWeights[d]
		if decadeScore >= 0.5 {
			reasons = append(reasons, fmt.Sprintf("From the %s, a decade you enjoy", d))
		}
	}

	var ratingScore float64
	if profile.AverageRating > 0 && movie.VoteAverage > 0 {
		ratingScore = 1 - math.Abs(movie.VoteAverage-profile.AverageRating)/10
		if ratingScore >= 0.9 {
			reasons = append(reasons, "Rated close to the movies you love")
		}
	}

	score := genreScoreWeight*genreScore + decadeScoreWeight*decadeScore + ratingScoreWeight*ratingScore
	return round2(score), reasons
}

func (s *TasteService) Recommendations(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "TasteService", "Recommendations")
	defer span.End()

	recs, err := s.repo.ListRecommendations(ctx, userID, domain.MaxRecommendationCount)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	if recs == nil {
		recs = []*domain.Recommendation{}
	}
	return recs, nil
}
