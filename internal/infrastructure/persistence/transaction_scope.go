package persistence

import (
	"context"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/portfolio"
	"gorm.io/gorm"
)

// GormTransactionScope implements ledger.TransactionScope using GORM transactions.
// Loans loaded through it are locked until commit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) GLAccounts() accounting.GLAccountRepository {
	return NewGormGLAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) JournalEntries() accounting.JournalEntryRepository {
	return NewGormJournalEntryRepository(r.tx)
}

func (r *gormTransactionalRepositories) Closures() accounting.GLClosureRepository {
	return NewGormGLClosureRepository(r.tx)
}

func (r *gormTransactionalRepositories) Provisioning() accounting.ProvisioningRepository {
	return NewGormProvisioningRepository(r.tx)
}

// Tellers returns a teller repository that locks the cashiers it loads.
func (r *gormTransactionalRepositories) Tellers() organisation.TellerRepository {
	return newLockingTellerRepository(r.tx)
}

// Loans returns a loan repository that locks the rows it loads.
func (r *gormTransactionalRepositories) Loans() portfolio.LoanRepository {
	return newLockingLoanRepository(r.tx)
}

func (r *gormTransactionalRepositories) Meetings() portfolio.MeetingRepository {
	return NewGormMeetingRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ ledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ ledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

var (
	_ accounting.GLAccountRepository      = (*GormGLAccountRepository)(nil)
	_ accounting.JournalEntryRepository   = (*GormJournalEntryRepository)(nil)
	_ accounting.AccountingRuleRepository = (*GormAccountingRuleRepository)(nil)
	_ accounting.GLClosureRepository      = (*GormGLClosureRepository)(nil)
	_ accounting.ProvisioningRepository   = (*GormProvisioningRepository)(nil)
	_ organisation.OfficeRepository       = (*GormOfficeRepository)(nil)
	_ organisation.StaffRepository        = (*GormStaffRepository)(nil)
	_ organisation.TellerRepository       = (*GormTellerRepository)(nil)
	_ organisation.HolidayRepository      = (*GormHolidayRepository)(nil)
	_ organisation.WorkingDaysRepository  = (*GormWorkingDaysRepository)(nil)
	_ portfolio.ClientRepository          = (*GormClientRepository)(nil)
	_ portfolio.GroupRepository           = (*GormGroupRepository)(nil)
	_ portfolio.CalendarRepository        = (*GormCalendarRepository)(nil)
	_ portfolio.MeetingRepository         = (*GormMeetingRepository)(nil)
	_ portfolio.LoanProductRepository     = (*GormLoanProductRepository)(nil)
	_ portfolio.LoanRepository            = (*GormLoanRepository)(nil)
)
