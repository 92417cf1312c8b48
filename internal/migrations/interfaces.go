package migrations

import (
	"context"
	"database/sql"

	"github.com/CinePrep/cineprep/config"
)

// DBExecutor represents a database connection that can execute queries
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// MajorMigrationInterface defines a major version migration. Migrations must
// be idempotent: on a database without a recorded version every registered
// migration up to the code version runs.
type MajorMigrationInterface interface {
	GetMajorVersion() float64
	Description() string
	ShouldRestartServer() bool
	Up(ctx context.Context, config *config.Config, db DBExecutor) error
}

type MigrationManager interface {
	GetCurrentDBVersion(ctx context.Context, db *sql.DB) (float64, error, bool)
	SetCurrentDBVersion(ctx context.Context, db *sql.DB, version float64) error
	RunMigrations(ctx context.Context, config *config.Config, db *sql.DB) error
	Status(ctx context.Context, db *sql.DB) (*Status, error)
}

type MigrationRegistry interface {
	Register(migration MajorMigrationInterface)
	GetMigrations() []MajorMigrationInterface
	GetMigration(version float64) (MajorMigrationInterface, bool)
	Pending(from, to float64) []MajorMigrationInterface
}

// Status describes what RunMigrations would do.
type Status struct {
	DBVersion   float64
	HasVersion  bool
	CodeVersion float64
	Pending     []MajorMigrationInterface
}
