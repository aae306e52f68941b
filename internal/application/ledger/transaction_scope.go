package ledger

import (
	"context"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/portfolio"
)

// TransactionScope runs a unit of work against repositories that share one
// database transaction. Loan, cashier and provisioning writes go through it
// together with their journal postings so both commit or neither does.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories of a transaction
type TransactionalRepositories interface {
	// GLAccounts returns the chart of accounts repository
	GLAccounts() accounting.GLAccountRepository
	// JournalEntries returns the journal line repository
	JournalEntries() accounting.JournalEntryRepository
	// Closures returns the GL closure repository
	Closures() accounting.GLClosureRepository
	// Provisioning returns the provisioning repository
	Provisioning() accounting.ProvisioningRepository
	// Tellers returns the teller and cashier repository
	Tellers() organisation.TellerRepository
	// Loans returns the loan repository
	Loans() portfolio.LoanRepository
	// Meetings returns the meeting repository
	Meetings() portfolio.MeetingRepository
}

// Repositories bundles plain repositories for NoOpTransactionScope
type Repositories struct {
	GLAccountRepo    accounting.GLAccountRepository
	JournalRepo      accounting.JournalEntryRepository
	ClosureRepo      accounting.GLClosureRepository
	ProvisioningRepo accounting.ProvisioningRepository
	TellerRepo       organisation.TellerRepository
	LoanRepo         portfolio.LoanRepository
	MeetingRepo      portfolio.MeetingRepository
}

// NoOpTransactionScope runs fn against the given repositories without a
// database transaction. Used in tests.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) GLAccounts() accounting.GLAccountRepository {
	return s.repos.GLAccountRepo
}

func (s *NoOpTransactionScope) JournalEntries() accounting.JournalEntryRepository {
	return s.repos.JournalRepo
}

func (s *NoOpTransactionScope) Closures() accounting.GLClosureRepository { return s.repos.ClosureRepo }

func (s *NoOpTransactionScope) Provisioning() accounting.ProvisioningRepository {
	return s.repos.ProvisioningRepo
}

func (s *NoOpTransactionScope) Tellers() organisation.TellerRepository { return s.repos.TellerRepo }

func (s *NoOpTransactionScope) Loans() portfolio.LoanRepository { return s.repos.LoanRepo }

func (s *NoOpTransactionScope) Meetings() portfolio.MeetingRepository { return s.repos.MeetingRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
