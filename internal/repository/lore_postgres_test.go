package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/repository/testutil"
)

func TestLoreRepository_Create(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewLoreRepository(db)
	analysis := &domain.LoreAnalysis{
		UserID:     "user-1",
		MovieID:    3,
		MovieTitle: "Return of the Jedi",
		Analysis: &domain.LoreDocument{
			MovieID:        3,
			RequiredMovies: []domain.RequiredMovie{{MovieID: 1, Title: "A New Hope", Narrative: "..."}},
		},
		Model:      "qwen-plus",
		TokensUsed: 1200,
		CostUSD:    0.00096,
	}

	mock.ExpectExec(`INSERT INTO user_analyses \(id,user_id,movie_id,movie_title,analysis,model,tokens_used,cost_usd,cached,created_at\)`).
		WithArgs(sqlmock.AnyArg(), "user-1", 3, "Return of the Jedi", sqlmock.AnyArg(), "qwen-plus", 1200, 0.00096, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), analysis))
	_, err := uuid.Parse(analysis.ID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoreRepository_GetByID(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewLoreRepository(db)
	id := uuid.New().String()

	mock.ExpectQuery(`SELECT .* FROM user_analyses WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, "user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "movie_id", "movie_title", "analysis", "model", "tokens_used", "cost_usd", "cached", "created_at",
		}).AddRow(id, "user-1", 3, "Return of the Jedi",
			[]byte(`{"movie_id":3,"required_movies":[{"movie_id":1,"title":"A New Hope","narrative":"Luke leaves Tatooine.","key_facts":[],"emotional_beats":[],"tone":"epic","audio":{"available":false}}]}`),
			"qwen-plus", 1200, 0.00096, true, time.Now()))

	analysis, err := repo.GetByID(context.Background(), "user-1", id)
	require.NoError(t, err)
	require.Len(t, analysis.Analysis.RequiredMovies, 1)
	assert.Equal(t, "epic", analysis.Analysis.RequiredMovies[0].Tone)
	assert.True(t, analysis.Cached)

	t.Run("malformed id is not found without a query", func(t *testing.T) {
		_, err := repo.GetByID(context.Background(), "user-1", "not-a-uuid")
		var notFound *domain.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoreRepository_List(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewLoreRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_analyses WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`FROM user_analyses WHERE user_id = \$1 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 0`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "movie_title", "count", "cached", "created_at"}).
			AddRow("a1", 3, "Return of the Jedi", 2, false, now))

	summaries, total, err := repo.List(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].RequiredMovieCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoreRepository_Delete(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewLoreRepository(db)
	id := uuid.New().String()

	mock.ExpectExec(`DELETE FROM user_analyses WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user-1", id)
	var notFound *domain.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
