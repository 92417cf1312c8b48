package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// SetupMockDB creates a regexp-matching sqlmock database. The returned
// cleanup closes it.
func SetupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

// ExpectFreePlan registers the idempotent free plan insert followed by the
// id lookup, answering with planID.
func ExpectFreePlan(mock sqlmock.Sqlmock, planID string) {
	mock.ExpectExec(`INSERT INTO plans .* ON CONFLICT \(slug\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "free", "Free", 0, 5, 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id FROM plans WHERE slug = \$1`).
		WithArgs("free").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(planID))
}

// FixedClock returns a clock that always reports now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}
