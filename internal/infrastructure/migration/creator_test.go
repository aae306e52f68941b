package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add loans table", "add_loans_table"},
		{"Add-Loan-Tranches", "add_loan_tranches"},
		{"ADD_GL_CLOSURES", "add_gl_closures"},
		{"add__hook__events", "add_hook_events"},
		{"Add Index 123", "add_index_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "add loan charges", "Charges on loan transactions")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_loan_charges.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_loan_charges.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Charges on loan transactions")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	require.NoError(t, Verify(dir))
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000002_create_loans.up.sql",
		"000002_create_loans.down.sql",
		"000001_create_offices.up.sql",
		"000001_create_offices.down.sql",
		"README.md",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_offices", "000002_create_loans"}, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestVerify(t *testing.T) {
	t.Run("missing down", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "000001_init.up.sql")
		assert.ErrorContains(t, Verify(dir), "no .down.sql")
	})

	t.Run("orphan down", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "000001_init.down.sql")
		assert.ErrorContains(t, Verify(dir), "no .up.sql")
	})

	t.Run("duplicate version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_a.up.sql", "000001_a.down.sql",
			"000001_b.up.sql", "000001_b.down.sql",
		)
		assert.ErrorContains(t, Verify(dir), "share version")
	})
}

func TestRepositoryMigrations(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	require.NoError(t, Verify(dir))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	var schema strings.Builder
	for _, m := range migrations {
		content, err := os.ReadFile(filepath.Join(dir, m+upSuffix))
		require.NoError(t, err)
		schema.Write(content)
	}
	sql := schema.String()

	for _, table := range []string{
		"offices", "staff", "tellers", "cashiers", "cashier_transactions", "holidays", "holiday_offices", "working_days",
		"gl_accounts", "journal_entries", "accounting_rules", "gl_closures",
		"provisioning_categories", "provisioning_criteria", "provisioning_criteria_definitions",
		"provisioning_entries", "provisioning_entry_lines",
		"clients", "client_documents", "groups", "group_clients",
		"calendars", "calendar_instances", "calendar_history", "meetings", "client_attendance",
		"loan_products", "loans", "loan_disbursements", "loan_installments", "loan_transactions",
		"hooks", "hook_events", "hook_deliveries", "command_sources", "app_users",
	} {
		assert.Contains(t, sql, "CREATE TABLE "+table+" (", table)
	}
	assert.Contains(t, sql, "idx_command_sources_idempotency")
	assert.Contains(t, sql, "WHERE status = 'PROCESSED'")
	assert.Contains(t, sql, "ON gl_accounts (tenant_id, gl_code)")
}
