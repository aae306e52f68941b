package accounting

import (
	"testing"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type ledgerMocks struct {
	accounts     *testutil.MockGLAccountRepository
	journal      *testutil.MockJournalEntryRepository
	closures     *testutil.MockGLClosureRepository
	provisioning *testutil.MockProvisioningRepository
	loans        *testutil.MockLoanRepository
	scope        *ledger.NoOpTransactionScope
}

func newLedgerMocks() *ledgerMocks {
	m := &ledgerMocks{
		accounts:     new(testutil.MockGLAccountRepository),
		journal:      new(testutil.MockJournalEntryRepository),
		closures:     new(testutil.MockGLClosureRepository),
		provisioning: new(testutil.MockProvisioningRepository),
		loans:        new(testutil.MockLoanRepository),
	}
	m.scope = ledger.NewNoOpTransactionScope(ledger.Repositories{
		GLAccountRepo:    m.accounts,
		JournalRepo:      m.journal,
		ClosureRepo:      m.closures,
		ProvisioningRepo: m.provisioning,
		LoanRepo:         m.loans,
	})
	return m
}

func newAccount(t *testing.T, tenantID uuid.UUID, code string, typ accounting.GLAccountType, usage accounting.GLAccountUsage, parent *accounting.GLAccount) *accounting.GLAccount {
	t.Helper()
	a, err := accounting.NewGLAccount(tenantID, accounting.GLAccountInput{
		Name:                 "Account " + code,
		GLCode:               code,
		Type:                 typ,
		Usage:                usage,
		ManualEntriesAllowed: true,
	}, parent)
	require.NoError(t, err)
	return a
}

func yesterday() string {
	return shared.Today().AddDate(0, 0, -1).Format(shared.DateLayout)
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	de, ok := err.(*shared.DomainError)
	require.True(t, ok, "expected domain error, got %T: %v", err, err)
	return de.Code
}
