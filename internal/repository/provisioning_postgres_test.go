package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/repository/testutil"
)

func TestAccountProvisioner_ProvisionFreeAccount(t *testing.T) {
	now := time.Date(2026, 5, 17, 8, 30, 0, 0, time.UTC)
	usageStart, usageEnd := domain.CurrentPeriod(now)

	t.Run("first sign-in creates the membership", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		p := &accountProvisioner{systemDB: db, now: testutil.FixedClock(now)}

		mock.ExpectBegin()
		testutil.ExpectFreePlan(mock, "plan-free")
		mock.ExpectExec(`INSERT INTO memberships .* ON CONFLICT \(user_id\) WHERE status = 'active' DO NOTHING`).
			WithArgs(sqlmock.AnyArg(), "user-1", "plan-free", domain.MembershipStatusActive, domain.BillingCycleYearly,
				now, now.AddDate(1, 0, 0), now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO usage_tracking .* ON CONFLICT \(user_id, period_start\) DO NOTHING`).
			WithArgs(sqlmock.AnyArg(), "user-1", usageStart, usageEnd, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO user_preferences .* ON CONFLICT \(user_id\) DO NOTHING`).
			WithArgs("user-1", "en", "neutral", "standard", "dark", true, false, false, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		created, err := p.ProvisionFreeAccount(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeat sign-in converges on the existing rows", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		p := &accountProvisioner{systemDB: db, now: testutil.FixedClock(now)}

		mock.ExpectBegin()
		testutil.ExpectFreePlan(mock, "plan-free")
		mock.ExpectExec(`INSERT INTO memberships`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO usage_tracking`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO user_preferences`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		created, err := p.ProvisionFreeAccount(context.Background(), "user-1")
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure rolls back every step", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		p := &accountProvisioner{systemDB: db, now: testutil.FixedClock(now)}

		mock.ExpectBegin()
		testutil.ExpectFreePlan(mock, "plan-free")
		mock.ExpectExec(`INSERT INTO memberships`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO usage_tracking`).WillReturnError(errors.New("connection lost"))
		mock.ExpectRollback()

		_, err := p.ProvisionFreeAccount(context.Background(), "user-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to ensure usage row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
