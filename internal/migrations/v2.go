package migrations

import (
	"context"
	"fmt"

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/internal/database/schema"
)

// V2Migration makes account provisioning atomic: it merges the duplicate
// usage rows, memberships and favorites that check-then-insert provisioning
// could leave behind, then creates the unique indexes the upserts target.
type V2Migration struct{}

func (m *V2Migration) GetMajorVersion() float64 {
	return 2.0
}

func (m *V2Migration) Description() string {
	return "deduplicate provisioning rows and add unique indexes"
}

func (m *V2Migration) ShouldRestartServer() bool {
	return false
}

var v2ColumnStatements = []string{
	`ALTER TABLE usage_tracking ADD COLUMN IF NOT EXISTS tokens_used BIGINT NOT NULL DEFAULT 0`,
	`ALTER TABLE usage_tracking ADD COLUMN IF NOT EXISTS cost_usd NUMERIC(12, 6) NOT NULL DEFAULT 0`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS provider_uid VARCHAR(128)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS last_login_at TIMESTAMPTZ`,
}

var v2DedupeStatements = []struct {
	name  string
	query string
}{
	{
		name: "merge duplicate usage counters",
		query: `
			WITH totals AS (
				SELECT user_id, period_start,
					MIN(id::text) AS keep_id,
					SUM(analyses_count) AS analyses,
					SUM(audio_count) AS audio,
					SUM(tokens_used) AS tokens,
					SUM(cost_usd) AS cost
				FROM usage_tracking
				GROUP BY user_id, period_start
				HAVING COUNT(*) > 1
			)
			UPDATE usage_tracking u
			SET analyses_count = t.analyses,
				audio_count = t.audio,
				tokens_used = t.tokens,
				cost_usd = t.cost,
				updated_at = CURRENT_TIMESTAMP
			FROM totals t
			WHERE u.id::text = t.keep_id`,
	},
	{
		name: "delete duplicate usage rows",
		query: `
			DELETE FROM usage_tracking u
			USING usage_tracking k
			WHERE u.user_id = k.user_id
				AND u.period_start = k.period_start
				AND u.id::text > k.id::text`,
	},
	{
		name: "cancel extra active memberships",
		query: `
			UPDATE memberships m
			SET status = 'cancelled', updated_at = CURRENT_TIMESTAMP
			FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_at DESC, id DESC) AS rn
				FROM memberships
				WHERE status = 'active'
			) d
			WHERE m.id = d.id AND d.rn > 1`,
	},
	{
		name: "delete duplicate favorites",
		query: `
			DELETE FROM favorites f
			USING favorites k
			WHERE f.user_id = k.user_id
				AND f.movie_id = k.movie_id
				AND (f.created_at, f.id::text) > (k.created_at, k.id::text)`,
	},
}

func (m *V2Migration) Up(ctx context.Context, cfg *config.Config, db DBExecutor) error {
	for _, stmt := range v2ColumnStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column: %w", err)
		}
	}

	for _, step := range v2DedupeStatements {
		if _, err := db.ExecContext(ctx, step.query); err != nil {
			return fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	for _, stmt := range schema.IndexDefinitions {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func init() {
	Register(&V2Migration{})
}
