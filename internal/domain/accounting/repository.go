package accounting

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GLAccountFilter defines filtering options for GL account queries
type GLAccountFilter struct {
	shared.Filter
	Type                 *GLAccountType
	Usage                *GLAccountUsage
	Disabled             *bool
	ManualEntriesAllowed *bool
	Tag                  string
}

// GLAccountRepository defines persistence for the chart of accounts
type GLAccountRepository interface {
	// FindByIDForTenant finds an account by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*GLAccount, error)

	// FindByIDs loads several accounts keyed by ID
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*GLAccount, error)

	// FindAllForTenant lists accounts
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter GLAccountFilter) ([]GLAccount, int64, error)

	// ExistsByGLCode checks for a duplicate GL code
	ExistsByGLCode(ctx context.Context, tenantID uuid.UUID, glCode string, excludeID *uuid.UUID) (bool, error)

	// HasChildren reports whether any account has this parent
	HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *GLAccount) error

	// RewriteHierarchy replaces the hierarchy prefix of descendants
	RewriteHierarchy(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string) error

	// Delete removes an account
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// JournalEntryFilter defines filtering options for journal line queries
type JournalEntryFilter struct {
	shared.Filter
	GLAccountID   *uuid.UUID
	OfficeID      *uuid.UUID
	FromDate      *time.Time
	ToDate        *time.Time
	TransactionID string
	ManualOnly    bool
	EntityType    *EntityType
	EntityID      *uuid.UUID
}

// JournalEntryRepository defines persistence for journal lines
type JournalEntryRepository interface {
	// SaveTransaction inserts the lines of a new transaction
	SaveTransaction(ctx context.Context, txn *JournalTransaction) error

	// SaveReversal inserts the reversal and flags the original lines
	SaveReversal(ctx context.Context, original, reversal *JournalTransaction) error

	// FindTransaction loads every line of a transaction
	FindTransaction(ctx context.Context, tenantID uuid.UUID, transactionID string) (*JournalTransaction, error)

	// FindAllForTenant lists journal lines
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter JournalEntryFilter) ([]JournalEntry, int64, error)

	// ExistsForAccount reports whether any line posts to the account
	ExistsForAccount(ctx context.Context, tenantID, glAccountID uuid.UUID) (bool, error)

	// TrialBalance aggregates debits and credits per account up to asOf
	TrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time, officeID *uuid.UUID) ([]TrialBalanceLine, error)
}

// AccountingRuleRepository defines persistence for accounting rules
type AccountingRuleRepository interface {
	// FindByIDForTenant finds a rule by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*AccountingRule, error)

	// FindAllForTenant lists rules
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]AccountingRule, error)

	// ExistsByName checks for a duplicate rule name
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a rule
	Save(ctx context.Context, rule *AccountingRule) error

	// Delete removes a rule
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// GLClosureRepository defines persistence for closures
type GLClosureRepository interface {
	// FindByIDForTenant finds a closure by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*GLClosure, error)

	// FindLatestForOffice returns the latest active closure, or nil
	FindLatestForOffice(ctx context.Context, tenantID, officeID uuid.UUID) (*GLClosure, error)

	// FindAllForTenant lists active closures, optionally for one office
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, officeID *uuid.UUID) ([]GLClosure, error)

	// Save creates or updates a closure
	Save(ctx context.Context, closure *GLClosure) error
}

// ProvisioningRepository defines persistence for categories, criteria and entries
type ProvisioningRepository interface {
	// FindCategory finds a category by ID
	FindCategory(ctx context.Context, tenantID, id uuid.UUID) (*ProvisioningCategory, error)

	// FindCategories lists categories
	FindCategories(ctx context.Context, tenantID uuid.UUID) ([]ProvisioningCategory, error)

	// SaveCategory creates or updates a category
	SaveCategory(ctx context.Context, category *ProvisioningCategory) error

	// DeleteCategory removes a category
	DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error

	// CategoryInUse reports whether any criteria definition uses the category
	CategoryInUse(ctx context.Context, tenantID, id uuid.UUID) (bool, error)

	// FindCriteria finds criteria by ID
	FindCriteria(ctx context.Context, tenantID, id uuid.UUID) (*ProvisioningCriteria, error)

	// FindAllCriteria lists criteria with their definitions
	FindAllCriteria(ctx context.Context, tenantID uuid.UUID) ([]ProvisioningCriteria, error)

	// SaveCriteria creates or updates criteria
	SaveCriteria(ctx context.Context, criteria *ProvisioningCriteria) error

	// DeleteCriteria removes criteria
	DeleteCriteria(ctx context.Context, tenantID, id uuid.UUID) error

	// FindEntry finds an entry by ID with its lines
	FindEntry(ctx context.Context, tenantID, id uuid.UUID) (*ProvisioningEntry, error)

	// FindEntryByDate finds the entry for a date, or NOT_FOUND
	FindEntryByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (*ProvisioningEntry, error)

	// FindEntries lists entries without lines, newest first
	FindEntries(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ProvisioningEntry, int64, error)

	// SaveEntry creates or updates an entry and replaces its lines
	SaveEntry(ctx context.Context, entry *ProvisioningEntry) error
}
