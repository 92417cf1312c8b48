package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/domain/mocks"
)

func tasteFavorites() []*domain.Favorite {
	return []*domain.Favorite{
		{MovieID: 100, Title: "The Matrix", Genres: []string{"Action", "Science Fiction"}, ReleaseYear: 1999, VoteAverage: 8.0, CreatedAt: quotaNow},
		{MovieID: 101, Title: "Inception", Genres: []string{"Action"}, ReleaseYear: 2010, VoteAverage: 7.0, CreatedAt: quotaNow.Add(-tasteHalfLife)},
	}
}

func newTestTasteService(ctrl *gomock.Controller) (*TasteService, *mocks.MockFavoriteRepository, *mocks.MockTasteRepository) {
	favorites := mocks.NewMockFavoriteRepository(ctrl)
	repo := mocks.NewMockTasteRepository(ctrl)
	svc := NewTasteService(TasteServiceConfig{
		Favorites: favorites,
		Repo:      repo,
		Logger:    setupMockLogger(ctrl),
		Now:       func() time.Time { return quotaNow },
	})
	return svc, favorites, repo
}

func TestBuildTasteProfile(t *testing.T) {
	profile := BuildTasteProfile("user-1", tasteFavorites(), quotaNow)

	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, 2, profile.FavoritesCount)
	assert.Equal(t, 7.5, profile.AverageRating)
	assert.Equal(t, domain.Weights{"Action": 1, "Science Fiction": 0.67}, profile.GenreWeights)
	assert.Equal(t, domain.Weights{"1990s": 1, "2010s": 0.5}, profile.DecadeWeights)

	empty := BuildTasteProfile("user-2", nil, quotaNow)
	assert.Empty(t, empty.GenreWeights)
	assert.NotNil(t, empty.GenreWeights)
	assert.Zero(t, empty.AverageRating)
}

func TestScoreCandidate(t *testing.T) {
	profile := BuildTasteProfile("user-1", tasteFavorites(), quotaNow)

	score, reasons := ScoreCandidate(profile, domain.Movie{ID: 1, Title: "The Matrix Reloaded", Genres: []string{"Action", "Science Fiction"}, ReleaseDate: "2003-05-15", VoteAverage: 7.2})
	assert.InDelta(t, 0.65, score, 0.001)
	assert.Equal(t, []string{"You often favorite Action movies", "Rated close to the movies you love"}, reasons)

	score, reasons = ScoreCandidate(profile, domain.Movie{ID: 2, Title: "Unrelated", Genres: []string{"Documentary"}})
	assert.Zero(t, score)
	assert.Empty(t, reasons)
}

func TestTasteService_Recommend(t *testing.T) {
	t.Run("ranks and excludes favorites", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, favorites, repo := newTestTasteService(ctrl)

		favorites.EXPECT().ListAll(gomock.Any(), "user-1").Return(tasteFavorites(), nil)
		repo.EXPECT().SaveProfile(gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().ReplaceRecommendations(gomock.Any(), "user-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, recs []*domain.Recommendation) error {
				assert.Len(t, recs, 2)
				return nil
			})

		recs, err := svc.Recommend(context.Background(), "user-1", domain.RecommendRequest{
			Candidates: []domain.Movie{
				{ID: 200, Title: "Drama", Genres: []string{"Drama"}, Year: 2015, VoteAverage: 5},
				{ID: 100, Title: "The Matrix", Genres: []string{"Action"}, Year: 1999},
				{ID: 603, Title: "Blade Runner", Genres: []string{"Action", "Science Fiction"}, Year: 1999, VoteAverage: 8.2},
				{ID: 603, Title: "Blade Runner", Genres: []string{"Action"}},
			},
		})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, 603, recs[0].MovieID)
		assert.InDelta(t, 0.89, recs[0].Score, 0.001)
		assert.Len(t, recs[0].Reasons, 3)
		assert.Equal(t, 200, recs[1].MovieID)
		assert.InDelta(t, 0.24, recs[1].Score, 0.001)
		assert.Equal(t, []string{"From the 2010s, a decade you enjoy"}, recs[1].Reasons)
	})

	t.Run("limit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, favorites, repo := newTestTasteService(ctrl)

		favorites.EXPECT().ListAll(gomock.Any(), gomock.Any()).Return(nil, nil)
		repo.EXPECT().SaveProfile(gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().ReplaceRecommendations(gomock.Any(), gomock.Any(), gomock.Len(1)).Return(nil)

		recs, err := svc.Recommend(context.Background(), "user-1", domain.RecommendRequest{
			Candidates: []domain.Movie{{ID: 3, Title: "C"}, {ID: 1, Title: "A"}, {ID: 2, Title: "B"}},
			Limit:      1,
		})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 1, recs[0].MovieID)
	})

	t.Run("no candidates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _, _ := newTestTasteService(ctrl)

		_, err := svc.Recommend(context.Background(), "user-1", domain.RecommendRequest{})
		var validationErr domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("favorites failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, favorites, _ := newTestTasteService(ctrl)

		favorites.EXPECT().ListAll(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
		_, err := svc.Recommend(context.Background(), "user-1", domain.RecommendRequest{Candidates: []domain.Movie{{ID: 1, Title: "A"}}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list favorites")
	})
}

func TestTasteService_ProfileAndRecommendations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, favorites, repo := newTestTasteService(ctrl)

	favorites.EXPECT().ListAll(gomock.Any(), "user-1").Return(tasteFavorites(), nil)
	repo.EXPECT().SaveProfile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.TasteProfile) error {
			assert.Equal(t, 2, p.FavoritesCount)
			return nil
		})
	profile, err := svc.Profile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, quotaNow, profile.UpdatedAt)

	repo.EXPECT().ListRecommendations(gomock.Any(), "user-1", domain.MaxRecommendationCount).Return(nil, nil)
	recs, err := svc.Recommendations(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, recs)
}
