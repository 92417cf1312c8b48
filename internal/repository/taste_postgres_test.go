package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/repository/testutil"
)

func TestTasteRepository_GetProfile(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewTasteRepository(db)

	mock.ExpectQuery(`SELECT .* FROM taste_profiles WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "genre_weights", "decade_weights", "average_rating", "favorites_count", "updated_at",
		}).AddRow("user-1", []byte(`{"Action":1,"Drama":0.5}`), []byte(`{"1990s":1}`), 7.4, 6, time.Now()))

	profile, err := repo.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0.5, profile.GenreWeights["Drama"])
	assert.Equal(t, 1.0, profile.DecadeWeights["1990s"])
	assert.Equal(t, 6, profile.FavoritesCount)

	mock.ExpectQuery(`SELECT .* FROM taste_profiles`).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetProfile(context.Background(), "user-2")
	var notFound *domain.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestTasteRepository_SaveProfile(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewTasteRepository(db)

	mock.ExpectExec(`INSERT INTO taste_profiles .* ON CONFLICT \(user_id\) DO UPDATE SET`).
		WithArgs("user-1", sqlmock.AnyArg(), sqlmock.AnyArg(), 7.0, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveProfile(context.Background(), &domain.TasteProfile{
		UserID:         "user-1",
		GenreWeights:   domain.Weights{"Action": 1},
		AverageRating:  7,
		FavoritesCount: 2,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTasteRepository_ReplaceRecommendations(t *testing.T) {
	t.Run("replaces the stored set", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewTasteRepository(db)
		recs := []*domain.Recommendation{
			{MovieID: 1, Title: "A", Score: 0.9, Reasons: []string{"genre: Action"}},
			{MovieID: 2, Title: "B", Score: 0.4},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM recommendations WHERE user_id = \$1`).
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 5))
		mock.ExpectExec(`INSERT INTO recommendations \(id,user_id,movie_id,title,score,reasons,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7\),\(\$8,\$9,\$10,\$11,\$12,\$13,\$14\)`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceRecommendations(context.Background(), "user-1", recs))
		assert.Equal(t, "user-1", recs[0].UserID)
		assert.NotEmpty(t, recs[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty set only clears", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewTasteRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM recommendations`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceRecommendations(context.Background(), "user-1", nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewTasteRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM recommendations`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO recommendations`).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.ReplaceRecommendations(context.Background(), "user-1", []*domain.Recommendation{{MovieID: 1, Title: "A"}})
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTasteRepository_ListRecommendations(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewTasteRepository(db)

	mock.ExpectQuery(`SELECT id, user_id, movie_id, title, score, reasons, created_at FROM recommendations WHERE user_id = \$1 ORDER BY score DESC, movie_id ASC LIMIT 10`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "movie_id", "title", "score", "reasons", "created_at"}).
			AddRow("r1", "user-1", 11, "Star Wars", 0.87, []byte(`{"genre: Sci-Fi"}`), time.Now()))

	recs, err := repo.ListRecommendations(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"genre: Sci-Fi"}, recs[0].Reasons)
}
