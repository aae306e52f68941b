package organisation

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OfficeFilter defines filtering options for office queries
type OfficeFilter struct {
	shared.Filter
	UnderHierarchy string // restrict to a subtree, e.g. ".<id>."
}

// OfficeRepository defines persistence for offices
type OfficeRepository interface {
	// FindByIDForTenant finds an office by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Office, error)

	// FindHeadOffice returns the tenant's root office
	FindHeadOffice(ctx context.Context, tenantID uuid.UUID) (*Office, error)

	// FindAllForTenant lists offices ordered by hierarchy
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter OfficeFilter) ([]Office, int64, error)

	// ExistsByName checks for a duplicate office name
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates an office
	Save(ctx context.Context, office *Office) error

	// RewriteHierarchy replaces the hierarchy prefix of every descendant
	RewriteHierarchy(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string) error
}

// StaffFilter defines filtering options for staff queries
type StaffFilter struct {
	shared.Filter
	OfficeID     *uuid.UUID
	LoanOfficers *bool
	Active       *bool
}

// StaffRepository defines persistence for staff
type StaffRepository interface {
	// FindByIDForTenant finds a staff member by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Staff, error)

	// FindAllForTenant lists staff
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter StaffFilter) ([]Staff, int64, error)

	// Save creates or updates a staff member
	Save(ctx context.Context, staff *Staff) error
}

// TellerRepository defines persistence for tellers, cashiers and cash movements
type TellerRepository interface {
	// FindByIDForTenant finds a teller by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Teller, error)

	// FindAllForTenant lists tellers, optionally for one office
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, officeID *uuid.UUID) ([]Teller, error)

	// ExistsByName checks for a duplicate teller name in an office
	ExistsByName(ctx context.Context, tenantID, officeID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a teller
	Save(ctx context.Context, teller *Teller) error

	// Delete removes a teller
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// FindCashier finds a cashier of a teller
	FindCashier(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID) (*Cashier, error)

	// FindCashiers lists the cashiers of a teller
	FindCashiers(ctx context.Context, tenantID, tellerID uuid.UUID) ([]Cashier, error)

	// SaveCashier creates or updates a cashier
	SaveCashier(ctx context.Context, cashier *Cashier) error

	// DeleteCashier removes a cashier with no transactions
	DeleteCashier(ctx context.Context, tenantID, cashierID uuid.UUID) error

	// SaveCashierTransaction records a cash movement
	SaveCashierTransaction(ctx context.Context, txn *CashierTransaction) error

	// FindCashierTransactions lists cash movements for a cashier
	FindCashierTransactions(ctx context.Context, tenantID, cashierID uuid.UUID) ([]CashierTransaction, error)

	// CashierBalances sums cash movements per currency
	CashierBalances(ctx context.Context, tenantID, cashierID uuid.UUID) ([]CashierBalance, error)
}

// HolidayFilter defines filtering options for holidays
type HolidayFilter struct {
	OfficeID *uuid.UUID
	Status   *HolidayStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// HolidayRepository defines persistence for holidays
type HolidayRepository interface {
	// FindByIDForTenant finds a holiday by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Holiday, error)

	// FindAllForTenant lists holidays
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter HolidayFilter) ([]Holiday, error)

	// FindActiveForOffice returns active holidays of an office ending on or after from
	FindActiveForOffice(ctx context.Context, tenantID, officeID uuid.UUID, from time.Time) ([]Holiday, error)

	// Save creates or updates a holiday
	Save(ctx context.Context, holiday *Holiday) error
}

// WorkingDaysRepository stores the tenant working week
type WorkingDaysRepository interface {
	// FindForTenant returns the working days, or NOT_FOUND when unset
	FindForTenant(ctx context.Context, tenantID uuid.UUID) (*WorkingDays, error)

	// Save creates or updates the working days
	Save(ctx context.Context, wd *WorkingDays) error
}
