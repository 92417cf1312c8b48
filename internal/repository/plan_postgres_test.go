package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/repository/testutil"
)

var planRowColumns = []string{
	"id", "slug", "name", "price_monthly", "max_analyses_per_month",
	"max_audio_generations_per_month", "features", "created_at", "updated_at",
}

func TestPlanRepository_List(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewPlanRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM plans ORDER BY price_monthly ASC`).
		WillReturnRows(sqlmock.NewRows(planRowColumns).
			AddRow("p1", "free", "Free", 0, 5, 3, []byte(`{"audio":true,"history":true}`), now, now).
			AddRow("p2", "premium", "Premium", 999, -1, -1, []byte(`{"priority":true}`), now, now))

	plans, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.True(t, plans[0].Features.Audio)
	assert.Equal(t, domain.Unlimited, plans[1].MaxAnalysesPerMonth)
	assert.True(t, plans[1].Features.Priority)
}

func TestPlanRepository_GetBySlug(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewPlanRepository(db)

	mock.ExpectQuery(`SELECT .* FROM plans WHERE slug = \$1`).
		WithArgs("gold").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBySlug(context.Background(), "gold")
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "gold", notFound.ID)
}

func TestPlanRepository_Upsert(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewPlanRepository(db)
	now := time.Now().UTC()

	plan := domain.DefaultPaidPlans()[0]
	mock.ExpectQuery(`INSERT INTO plans .* ON CONFLICT \(slug\) DO UPDATE SET .* RETURNING id, created_at, updated_at`).
		WithArgs(sqlmock.AnyArg(), "pro", "Pro", 499, 50, 30, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("stored-id", now, now))

	require.NoError(t, repo.Upsert(context.Background(), plan))
	assert.Equal(t, "stored-id", plan.ID)

	err := repo.Upsert(context.Background(), &domain.Plan{Slug: "broken"})
	assert.IsType(t, domain.ValidationError{}, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
