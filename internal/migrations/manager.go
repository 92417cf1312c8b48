package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// ErrRestartRequired is returned after a migration that changes settings the
// running API has already loaded.
var ErrRestartRequired = errors.New("migration completed successfully - server restart required")

const (
	selectDBVersion = `SELECT value FROM settings WHERE key = 'db_version'`
	upsertDBVersion = `
		INSERT INTO settings (key, value) VALUES ('db_version', $1)
		ON CONFLICT (key) DO UPDATE SET
			value = $1,
			updated_at = CURRENT_TIMESTAMP`
)

func formatVersion(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// Manager brings the CinePrep schema up to the major version of the binary.
type Manager struct {
	logger      logger.Logger
	registry    MigrationRegistry
	codeVersion func() (float64, error)
}

func NewManager(logger logger.Logger) *Manager {
	return &Manager{
		logger:      logger,
		registry:    DefaultRegistry,
		codeVersion: GetCurrentCodeVersion,
	}
}

// GetCurrentDBVersion reads db_version from settings. The boolean is false
// when no version was ever recorded.
func (m *Manager) GetCurrentDBVersion(ctx context.Context, db *sql.DB) (float64, error, bool) {
	var raw string
	switch err := db.QueryRowContext(ctx, selectDBVersion).Scan(&raw); {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil, false
	case err != nil:
		return 0, fmt.Errorf("failed to get current database version: %w", err), false
	}

	version, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid database version format '%s': %w", raw, err), false
	}
	return version, nil, true
}

func (m *Manager) SetCurrentDBVersion(ctx context.Context, db *sql.DB, version float64) error {
	v := formatVersion(version)
	if _, err := db.ExecContext(ctx, upsertDBVersion, v); err != nil {
		return fmt.Errorf("failed to set database version to %s: %w", v, err)
	}

	m.logger.WithField("db_version", v).Info("Recorded schema version")
	return nil
}

// Status reports the recorded and code versions and the migrations between
// them.
func (m *Manager) Status(ctx context.Context, db *sql.DB) (*Status, error) {
	dbVersion, err, recorded := m.GetCurrentDBVersion(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to get current database version: %w", err)
	}

	codeVersion, err := m.codeVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get current code version: %w", err)
	}

	return &Status{
		DBVersion:   dbVersion,
		HasVersion:  recorded,
		CodeVersion: codeVersion,
		Pending:     m.registry.Pending(dbVersion, codeVersion),
	}, nil
}

// RunMigrations applies the pending migrations, each in its own transaction,
// then records the code version. An unversioned database runs every
// registered migration up to the code version.
func (m *Manager) RunMigrations(ctx context.Context, cfg *config.Config, db *sql.DB) error {
	status, err := m.Status(ctx, db)
	if err != nil {
		return err
	}

	log := m.logger.WithFields(map[string]interface{}{
		"db_version":   formatVersion(status.DBVersion),
		"code_version": formatVersion(status.CodeVersion),
		"versioned":    status.HasVersion,
	})

	if status.HasVersion && status.DBVersion >= status.CodeVersion {
		log.Info("Schema is current")
		return nil
	}
	log.WithField("pending", len(status.Pending)).Info("Migrating schema")

	restart := false
	for _, migration := range status.Pending {
		if err := m.apply(ctx, cfg, db, migration); err != nil {
			return fmt.Errorf("migration failed for version %s: %w", formatVersion(migration.GetMajorVersion()), err)
		}
		restart = restart || migration.ShouldRestartServer()
	}

	if err := m.SetCurrentDBVersion(ctx, db, status.CodeVersion); err != nil {
		return fmt.Errorf("failed to update database version after migrations: %w", err)
	}

	if restart {
		log.Warn("Schema migrated, restart the API to pick up the new settings")
		return ErrRestartRequired
	}
	return nil
}

func (m *Manager) apply(ctx context.Context, cfg *config.Config, db *sql.DB, migration MajorMigrationInterface) error {
	log := m.logger.WithFields(map[string]interface{}{
		"version":     formatVersion(migration.GetMajorVersion()),
		"description": migration.Description(),
	})
	log.Info("Applying migration")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := migration.Up(ctx, cfg, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	log.Info("Migration applied")
	return nil
}
