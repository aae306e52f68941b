package persistence

import (
	"strings"

	"github.com/fincore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder maps a requested direction onto ASC or DESC; anything
// other than asc, in any case, sorts descending.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is a whitelisted column and
// defaultField otherwise. Column names are matched exactly.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// paginate applies a whitelisted order and the page window of filter.
// defaultSort is "field" or "field dir" and applies when the filter names
// no sort field.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultSort string) *gorm.DB {
	defaultField, defaultDir, _ := strings.Cut(defaultSort, " ")
	if strings.TrimSpace(filter.OrderBy) == "" && defaultDir != "" {
		filter.OrderDir = defaultDir
	}
	filter.OrderDir = strings.ToLower(strings.TrimSpace(filter.OrderDir))
	filter = filter.Normalize()
	orderBy := ValidateSortField(filter.OrderBy, allowed, defaultField)
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir + ", id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"lastname":      true,
	"last_login_at": true,
}

// GLAccountSortFields contains allowed sort fields for GL accounts
var GLAccountSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"gl_code":    true,
	"name":       true,
	"type":       true,
	"hierarchy":  true,
}

// JournalEntrySortFields contains allowed sort fields for journal lines
var JournalEntrySortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"transaction_date": true,
	"transaction_id":   true,
	"amount":           true,
}

// OfficeSortFields contains allowed sort fields for offices
var OfficeSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"hierarchy":    true,
	"opening_date": true,
}

// StaffSortFields contains allowed sort fields for staff
var StaffSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"firstname":    true,
	"lastname":     true,
	"joining_date": true,
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"account_no":      true,
	"fullname":        true,
	"lastname":        true,
	"status":          true,
	"submitted_on":    true,
	"activation_date": true,
}

// GroupSortFields contains allowed sort fields for groups and centers
var GroupSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"status":          true,
	"submitted_on":    true,
	"activation_date": true,
}

// LoanProductSortFields contains allowed sort fields for loan products
var LoanProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"short_name": true,
}

// LoanSortFields contains allowed sort fields for loans
var LoanSortFields = map[string]bool{
	"id":                         true,
	"created_at":                 true,
	"updated_at":                 true,
	"account_no":                 true,
	"status":                     true,
	"submitted_on":               true,
	"expected_disbursement_date": true,
	"disbursed_on":               true,
	"principal":                  true,
}

// ProvisioningEntrySortFields contains allowed sort fields for provisioning entries
var ProvisioningEntrySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"entry_date": true,
}

// HookSortFields contains allowed sort fields for hooks
var HookSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"display_name": true,
	"active":       true,
}

// HookDeliverySortFields contains allowed sort fields for hook deliveries
var HookDeliverySortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"status":          true,
	"next_attempt_at": true,
	"attempts":        true,
}

// CommandSourceSortFields contains allowed sort fields for the audit trail
var CommandSourceSortFields = map[string]bool{
	"id":          true,
	"made_on":     true,
	"entity_name": true,
	"action_name": true,
	"status":      true,
}
