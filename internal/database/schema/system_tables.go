package schema

// TableDefinitions contains the statements that bootstrap a fresh database.
// Tables may pre-exist from earlier deployments, so uniqueness that the
// provisioning upserts rely on lives in IndexDefinitions and is applied by
// the v2 migration after deduplication.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(255) PRIMARY KEY,
		value TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		display_name VARCHAR(255),
		avatar_url TEXT,
		provider VARCHAR(32) NOT NULL DEFAULT 'firebase',
		provider_uid VARCHAR(128),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_login_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id UUID PRIMARY KEY,
		slug VARCHAR(32) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL,
		price_monthly INTEGER NOT NULL DEFAULT 0,
		max_analyses_per_month INTEGER NOT NULL,
		max_audio_generations_per_month INTEGER NOT NULL,
		features JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		plan_id UUID NOT NULL,
		status VARCHAR(20) NOT NULL,
		billing_cycle VARCHAR(20) NOT NULL,
		current_period_start TIMESTAMPTZ NOT NULL,
		current_period_end TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS usage_tracking (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		period_start TIMESTAMPTZ NOT NULL,
		period_end TIMESTAMPTZ NOT NULL,
		analyses_count INTEGER NOT NULL DEFAULT 0,
		audio_count INTEGER NOT NULL DEFAULT 0,
		tokens_used BIGINT NOT NULL DEFAULT 0,
		cost_usd NUMERIC(12, 6) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id UUID PRIMARY KEY,
		language VARCHAR(8) NOT NULL DEFAULT 'en',
		tone VARCHAR(20) NOT NULL DEFAULT 'neutral',
		detail_level VARCHAR(20) NOT NULL DEFAULT 'standard',
		theme VARCHAR(20) NOT NULL DEFAULT 'dark',
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		push_notifications BOOLEAN NOT NULL DEFAULT FALSE,
		autoplay_audio BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		movie_id INTEGER NOT NULL,
		title VARCHAR(255) NOT NULL,
		poster_path TEXT,
		release_year INTEGER,
		genres TEXT[] NOT NULL DEFAULT '{}',
		vote_average NUMERIC(4, 2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS taste_profiles (
		user_id UUID PRIMARY KEY,
		genre_weights JSONB NOT NULL DEFAULT '{}'::jsonb,
		decade_weights JSONB NOT NULL DEFAULT '{}'::jsonb,
		average_rating NUMERIC(4, 2) NOT NULL DEFAULT 0,
		favorites_count INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		movie_id INTEGER NOT NULL,
		title VARCHAR(255) NOT NULL,
		score NUMERIC(6, 4) NOT NULL,
		reasons TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_analyses (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		movie_id INTEGER NOT NULL,
		movie_title VARCHAR(255) NOT NULL,
		analysis JSONB NOT NULL,
		model VARCHAR(64) NOT NULL,
		tokens_used INTEGER NOT NULL DEFAULT 0,
		cost_usd NUMERIC(12, 6) NOT NULL DEFAULT 0,
		cached BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// IndexDefinitions are the indexes the repositories depend on. The unique ones
// back the ON CONFLICT targets of the provisioning and favorites upserts.
var IndexDefinitions = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS usage_tracking_user_period
		ON usage_tracking (user_id, period_start)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS memberships_one_active_per_user
		ON memberships (user_id) WHERE status = 'active'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS favorites_user_movie
		ON favorites (user_id, movie_id)`,
	`CREATE INDEX IF NOT EXISTS recommendations_user_score
		ON recommendations (user_id, score DESC)`,
	`CREATE INDEX IF NOT EXISTS user_analyses_user_created
		ON user_analyses (user_id, created_at DESC)`,
}

// TableNames lists the tables created by TableDefinitions, in creation order.
var TableNames = []string{
	"settings",
	"users",
	"plans",
	"memberships",
	"usage_tracking",
	"user_preferences",
	"favorites",
	"taste_profiles",
	"recommendations",
	"user_analyses",
}
