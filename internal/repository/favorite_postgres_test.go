package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/repository/testutil"
)

var favoriteRowColumns = []string{
	"id", "user_id", "movie_id", "title", "poster_path", "release_year", "genres", "vote_average", "created_at",
}

func TestFavoriteRepository_Add(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewFavoriteRepository(db)

	t.Run("new favorite", func(t *testing.T) {
		fav := &domain.Favorite{UserID: "user-1", MovieID: 603, Title: "The Matrix", ReleaseYear: 1999, Genres: []string{"Action"}}

		mock.ExpectExec(`INSERT INTO favorites \(id,user_id,movie_id,title,poster_path,release_year,genres,vote_average,created_at\) VALUES .* ON CONFLICT \(user_id, movie_id\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		saved, err := repo.Add(context.Background(), fav)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, 603, saved.MovieID)
	})

	t.Run("duplicate returns the stored row", func(t *testing.T) {
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		fav := &domain.Favorite{UserID: "user-1", MovieID: 603, Title: "The Matrix"}

		mock.ExpectExec(`INSERT INTO favorites`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT .* FROM favorites WHERE movie_id = \$1 AND user_id = \$2`).
			WithArgs(603, "user-1").
			WillReturnRows(sqlmock.NewRows(favoriteRowColumns).
				AddRow("fav-1", "user-1", 603, "The Matrix", "/m.jpg", 1999, []byte(`{Action,Sci-Fi}`), 8.2, created))

		saved, err := repo.Add(context.Background(), fav)
		require.NoError(t, err)
		assert.Equal(t, "fav-1", saved.ID)
		assert.Equal(t, created, saved.CreatedAt)
		assert.Equal(t, []string{"Action", "Sci-Fi"}, saved.Genres)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewFavoriteRepository(db)

	mock.ExpectExec(`DELETE FROM favorites WHERE user_id = \$1 AND movie_id = \$2`).
		WithArgs("user-1", 603).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Remove(context.Background(), "user-1", 603))

	mock.ExpectExec(`DELETE FROM favorites`).
		WithArgs("user-1", 604).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Remove(context.Background(), "user-1", 604)
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "604", notFound.ID)
}

func TestFavoriteRepository_Exists(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewFavoriteRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", 603).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "user-1", 603)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFavoriteRepository_List(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewFavoriteRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM favorites WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT .* FROM favorites WHERE user_id = \$1 ORDER BY created_at DESC, id DESC LIMIT 2 OFFSET 1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(favoriteRowColumns).
			AddRow("f2", "user-1", 2, "B", "", 0, nil, 7.0, now).
			AddRow("f1", "user-1", 1, "A", "", 2001, []byte(`{Drama}`), 6.5, now))

	favorites, total, err := repo.List(context.Background(), "user-1", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, favorites, 2)
	assert.Equal(t, []string{}, favorites[0].Genres)
	assert.Equal(t, []string{"Drama"}, favorites[1].Genres)
	assert.NoError(t, mock.ExpectationsWereMet())
}
