package main

import (
	"bytes"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/config"
)

func newTestContext(t *testing.T, db *sql.DB) *commandContext {
	t.Helper()
	ctx := newCommandContext()
	ctx.logOutput = &bytes.Buffer{}
	ctx.loadConfig = func(config.LoadOptions) (*config.Config, error) {
		return &config.Config{Version: "2.0", Environment: "test"}, nil
	}
	ctx.openDB = func(*config.Config) (*sql.DB, error) {
		if db == nil {
			return nil, errors.New("no database")
		}
		return db, nil
	}
	return ctx
}

func runCLI(t *testing.T, ctx *commandContext, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	out, err := runCLI(t, newTestContext(t, nil))
	require.NoError(t, err)
	assert.Contains(t, out, "migrate")
	assert.Contains(t, out, "plans")
	assert.Contains(t, out, "cost")
}

func TestRootCommand_ConfigError(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.loadConfig = func(config.LoadOptions) (*config.Config, error) {
		return nil, errors.New("DB_HOST is required")
	}

	_, err := runCLI(t, ctx, "plans", "list")
	assert.EqualError(t, err, "DB_HOST is required")
}

func TestRootCommand_EnvFileFlag(t *testing.T) {
	ctx := newTestContext(t, nil)
	var got string
	ctx.loadConfig = func(opts config.LoadOptions) (*config.Config, error) {
		got = opts.EnvFile
		return nil, errors.New("stop")
	}

	_, err := runCLI(t, ctx, "--env-file", "prod.env", "plans", "list")
	assert.Error(t, err)
	assert.Equal(t, "prod.env", got)
}

func TestCostCommand(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.loadConfig = func(config.LoadOptions) (*config.Config, error) {
		t.Fatal("cost must not load the configuration")
		return nil, nil
	}

	out, err := runCLI(t, ctx, "cost", "--tokens", "2000", "--analyses", "10", "--model", "qwen-plus")
	require.NoError(t, err)
	assert.Contains(t, out, "qwen-plus")
	assert.Contains(t, out, "10 analyses (USD)")
	assert.NotContains(t, out, "qwen-max")
}

func TestCostCommand_InvalidTokens(t *testing.T) {
	_, err := runCLI(t, newTestContext(t, nil), "cost", "--tokens", "0")
	assert.EqualError(t, err, "--tokens must be positive")
}

var planRowColumns = []string{
	"id", "slug", "name", "price_monthly", "max_analyses_per_month",
	"max_audio_generations_per_month", "features", "created_at", "updated_at",
}

func TestPlansList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM plans ORDER BY price_monthly ASC`).
		WillReturnRows(sqlmock.NewRows(planRowColumns).
			AddRow("p1", "free", "Free", 0, 5, 3, []byte(`{"audio":true}`), now, now).
			AddRow("p2", "premium", "Premium", 999, -1, -1, []byte(`{"priority":true}`), now, now))
	mock.ExpectClose()

	out, err := runCLI(t, newTestContext(t, db), "plans", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "free")
	assert.Contains(t, out, "$9.99")
	assert.Contains(t, out, "unlimited")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlansList_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .* FROM plans`).WillReturnRows(sqlmock.NewRows(planRowColumns))
	mock.ExpectClose()

	out, err := runCLI(t, newTestContext(t, db), "plans", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No plans found")
}

func TestPlansSeed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	now := time.Now().UTC()
	for _, id := range []string{"p1", "p2", "p3"} {
		mock.ExpectQuery("INSERT INTO plans").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, now, now))
	}
	mock.ExpectClose()

	out, err := runCLI(t, newTestContext(t, db), "plans", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 plans")
	assert.Contains(t, out, "premium")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery("SELECT value FROM settings WHERE key = 'db_version'").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("2"))
	mock.ExpectClose()

	out, err := runCLI(t, newTestContext(t, db), "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Database version: 2")
	assert.Contains(t, out, "Code version:     2")
	assert.Contains(t, out, "No pending migrations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_OpenError(t *testing.T) {
	_, err := runCLI(t, newTestContext(t, nil), "migrate")
	assert.EqualError(t, err, "no database")
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "3")
	assert.Empty(t, renderTable(nil, nil, nil))
}
