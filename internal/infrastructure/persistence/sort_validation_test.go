package persistence

import (
	"testing"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	for in, want := range map[string]string{
		"":             "DESC",
		"asc":          "ASC",
		" Asc ":        "ASC",
		"desc":         "DESC",
		"ascending":    "DESC",
		"asc; delete":  "DESC",
		"ASC NULLS 1":  "DESC",
		"\tASC\n":      "ASC",
		"random order": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(in), "%q", in)
	}
}

func TestValidateSortField_LoanColumns(t *testing.T) {
	tests := []struct {
		requested string
		want      string
	}{
		{"", "submitted_on"},
		{"principal", "principal"},
		{" disbursed_on ", "disbursed_on"},
		{"PRINCIPAL", "submitted_on"},
		{"principal desc", "submitted_on"},
		{"principal,(select password_hash from app_users)", "submitted_on"},
		{"outstanding_balance", "submitted_on"},
		{"account_no'--", "submitted_on"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateSortField(tt.requested, LoanSortFields, "submitted_on"), "%q", tt.requested)
	}
}

func TestSortWhitelists_AreColumnNames(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"users":        UserSortFields,
		"gl accounts":  GLAccountSortFields,
		"journal":      JournalEntrySortFields,
		"offices":      OfficeSortFields,
		"staff":        StaffSortFields,
		"clients":      ClientSortFields,
		"groups":       GroupSortFields,
		"products":     LoanProductSortFields,
		"loans":        LoanSortFields,
		"provisioning": ProvisioningEntrySortFields,
		"hooks":        HookSortFields,
		"deliveries":   HookDeliverySortFields,
		"audit":        CommandSourceSortFields,
	}
	for name, fields := range whitelists {
		assert.True(t, fields["id"], "%s must allow the id tiebreaker", name)
		for field, allowed := range fields {
			assert.True(t, allowed, "%s.%s", name, field)
			assert.Regexp(t, `^[a-z_]+$`, field, "%s", name)
		}
	}
}

type sortedRow struct {
	ID          string
	SubmittedOn string
	Principal   string
}

func dryRunSQL(t *testing.T, filter shared.Filter, defaultSort string) string {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []sortedRow
		return paginate(tx.Table("loans"), filter, LoanSortFields, defaultSort).Find(&rows)
	})
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name        string
		filter      shared.Filter
		defaultSort string
		wantOrder   string
		wantWindow  string
	}{
		{
			name:        "default field and direction",
			filter:      shared.Filter{},
			defaultSort: "submitted_on",
			wantOrder:   "ORDER BY submitted_on DESC, id ASC",
			wantWindow:  "LIMIT 20",
		},
		{
			name:        "default carries its own direction",
			filter:      shared.Filter{Page: 3, PageSize: 10},
			defaultSort: "account_no asc",
			wantOrder:   "ORDER BY account_no ASC, id ASC",
			wantWindow:  "LIMIT 10 OFFSET 20",
		},
		{
			name:        "requested field wins and upper case direction is honoured",
			filter:      shared.Filter{OrderBy: "principal", OrderDir: "ASC"},
			defaultSort: "account_no asc",
			wantOrder:   "ORDER BY principal ASC, id ASC",
			wantWindow:  "LIMIT 20",
		},
		{
			name:        "unknown field falls back",
			filter:      shared.Filter{OrderBy: "1; drop table loans", PageSize: 1000},
			defaultSort: "submitted_on",
			wantOrder:   "ORDER BY submitted_on DESC, id ASC",
			wantWindow:  "LIMIT 200",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := dryRunSQL(t, tt.filter, tt.defaultSort)
			assert.Contains(t, sql, tt.wantOrder)
			assert.Contains(t, sql, tt.wantWindow)
			assert.NotContains(t, sql, "drop table")
		})
	}
}
