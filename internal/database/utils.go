package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CinePrep/cineprep/config"
)

// GetConnectionPoolSettings returns connection pool settings based on environment
func GetConnectionPoolSettings() (maxOpen, maxIdle int, maxLifetime time.Duration) {
	environment := os.Getenv("ENVIRONMENT")

	// smaller pools for tests
	if environment == "test" || os.Getenv("INTEGRATION_TESTS") == "true" {
		return 10, 5, 2 * time.Minute
	}

	// Supabase poolers cap connections per project
	return 20, 10, 15 * time.Minute
}

// GetDSN returns the DSN of the application database. Credentials are escaped
// since Supabase passwords routinely contain URL-reserved characters.
func GetDSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// MaskedPassword returns the first and last characters of the password, for logs.
func MaskedPassword(password string) string {
	if len(password) == 0 {
		return ""
	}
	return fmt.Sprintf("%c...%c", password[0], password[len(password)-1])
}

// Open connects to Postgres, wrapping the driver with OpenCensus when tracing
// is enabled, and applies the pool settings.
func Open(cfg *config.DatabaseConfig, tracingEnabled bool) (*sql.DB, error) {
	driverName := "postgres"
	if tracingEnabled {
		var err error
		driverName, err = ocsql.Register(driverName, ocsql.WithAllTraceOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to register opencensus sql driver: %w", err)
		}
	}

	db, err := sql.Open(driverName, GetDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen, maxIdle, maxLifetime := GetConnectionPoolSettings()
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(maxLifetime / 2)

	return db, nil
}
