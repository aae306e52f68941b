package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_DownAndUpAgain(t *testing.T) {
	db := NewTestDB(t)
	m := db.Migrator()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.NotZero(t, version)

	for _, table := range []string{"offices", "gl_accounts", "journal_entries", "clients", "loans", "hooks", "command_sources", "app_users"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}

	require.NoError(t, m.Down())
	assert.False(t, db.DB.Migrator().HasTable("offices"))
	assert.False(t, db.DB.Migrator().HasTable("loans"))

	require.NoError(t, m.Up())
	require.NoError(t, m.Up(), "a second run has nothing to apply")
	after, _, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, version, after)
}
