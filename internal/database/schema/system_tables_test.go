package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableDefinitions(t *testing.T) {
	for i, statement := range TableDefinitions {
		assert.NotEmpty(t, strings.TrimSpace(statement), "statement %d should not be empty", i)
		assert.Contains(t, statement, "IF NOT EXISTS", "statement %d must be idempotent", i)
	}
}

func TestEveryTableIsDefined(t *testing.T) {
	joined := strings.Join(TableDefinitions, "\n")
	for _, table := range TableNames {
		assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table+" (", "missing table %s", table)
	}
}

func TestProvisioningConstraints(t *testing.T) {
	tables := strings.Join(TableDefinitions, "\n")
	assert.Contains(t, tables, "slug VARCHAR(32) NOT NULL UNIQUE")
	assert.Contains(t, tables, "email VARCHAR(255) NOT NULL UNIQUE")
	assert.Contains(t, tables, "user_id UUID PRIMARY KEY,\n\t\tlanguage")

	indexes := strings.Join(IndexDefinitions, "\n")
	assert.Contains(t, indexes, "ON usage_tracking (user_id, period_start)")
	assert.Contains(t, indexes, "ON memberships (user_id) WHERE status = 'active'")
	assert.Contains(t, indexes, "ON favorites (user_id, movie_id)")
	for _, statement := range IndexDefinitions {
		assert.Contains(t, statement, "IF NOT EXISTS")
	}
}
