package portfolio

import (
	"testing"
	"time"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type portfolioMocks struct {
	clients   *testutil.MockClientRepository
	groups    *testutil.MockGroupRepository
	calendars *testutil.MockCalendarRepository
	meetings  *testutil.MockMeetingRepository
	products  *testutil.MockLoanProductRepository
	loans     *testutil.MockLoanRepository
	staff     *testutil.MockStaffRepository
	offices   *testutil.MockOfficeRepository
	accounts  *testutil.MockGLAccountRepository
	journal   *testutil.MockJournalEntryRepository
	closures  *testutil.MockGLClosureRepository
	scope     *ledger.NoOpTransactionScope
}

func newPortfolioMocks() *portfolioMocks {
	m := &portfolioMocks{
		clients:   new(testutil.MockClientRepository),
		groups:    new(testutil.MockGroupRepository),
		calendars: new(testutil.MockCalendarRepository),
		meetings:  new(testutil.MockMeetingRepository),
		products:  new(testutil.MockLoanProductRepository),
		loans:     new(testutil.MockLoanRepository),
		staff:     new(testutil.MockStaffRepository),
		offices:   new(testutil.MockOfficeRepository),
		accounts:  new(testutil.MockGLAccountRepository),
		journal:   new(testutil.MockJournalEntryRepository),
		closures:  new(testutil.MockGLClosureRepository),
	}
	m.scope = ledger.NewNoOpTransactionScope(ledger.Repositories{
		GLAccountRepo: m.accounts,
		JournalRepo:   m.journal,
		ClosureRepo:   m.closures,
		LoanRepo:      m.loans,
		MeetingRepo:   m.meetings,
	})
	return m
}

func (m *portfolioMocks) loanService() *LoanService {
	return NewLoanService(LoanServiceDeps{
		TxScope:      m.scope,
		LoanRepo:     m.loans,
		ProductRepo:  m.products,
		ClientRepo:   m.clients,
		GroupRepo:    m.groups,
		StaffRepo:    m.staff,
		CalendarRepo: m.calendars,
	})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func monthlyTerms(principal string, n int) portfolio.LoanTerms {
	return portfolio.LoanTerms{
		Currency:              "USD",
		Digits:                2,
		Principal:             dec(principal),
		NumberOfRepayments:    n,
		RepaymentEvery:        1,
		RepaymentFrequency:    portfolio.PeriodMonths,
		InterestRatePerPeriod: dec("12"),
		InterestPeriod:        portfolio.InterestPerYear,
		Amortization:          portfolio.AmortizationEqualInstallments,
		InterestMethod:        portfolio.InterestDecliningBalance,
		InterestCalculation:   portfolio.InterestCalcSameAsRepayment,
	}
}

// ledgerAccounts is a chart for cash-accounted loan products
type ledgerAccounts struct {
	fund, portfolio, receivable, income, writeOff, overpayment *accounting.GLAccount
}

func newLedgerAccounts(t *testing.T, tenantID uuid.UUID) ledgerAccounts {
	t.Helper()
	acc := func(code string, typ accounting.GLAccountType) *accounting.GLAccount {
		a, err := accounting.NewGLAccount(tenantID, accounting.GLAccountInput{
			Name:   "Account " + code,
			GLCode: code,
			Type:   typ,
			Usage:  accounting.GLAccountUsageDetail,
		}, nil)
		require.NoError(t, err)
		return a
	}
	return ledgerAccounts{
		fund:        acc("1100", accounting.GLAccountTypeAsset),
		portfolio:   acc("1200", accounting.GLAccountTypeAsset),
		receivable:  acc("1300", accounting.GLAccountTypeAsset),
		income:      acc("4100", accounting.GLAccountTypeIncome),
		writeOff:    acc("5100", accounting.GLAccountTypeExpense),
		overpayment: acc("2100", accounting.GLAccountTypeLiability),
	}
}

func (a ledgerAccounts) byID() map[uuid.UUID]*accounting.GLAccount {
	out := make(map[uuid.UUID]*accounting.GLAccount)
	for _, acc := range []*accounting.GLAccount{a.fund, a.portfolio, a.receivable, a.income, a.writeOff, a.overpayment} {
		out[acc.ID] = acc
	}
	return out
}

func (a ledgerAccounts) mapping() portfolio.ProductAccounts {
	return portfolio.ProductAccounts{
		FundSource:         &a.fund.ID,
		LoanPortfolio:      &a.portfolio.ID,
		InterestReceivable: &a.receivable.ID,
		InterestIncome:     &a.income.ID,
		WriteOff:           &a.writeOff.ID,
		Overpayment:        &a.overpayment.ID,
	}
}

func newProduct(t *testing.T, tenantID uuid.UUID, accountingType portfolio.AccountingType, accounts portfolio.ProductAccounts) *portfolio.LoanProduct {
	t.Helper()
	p, err := portfolio.NewLoanProduct(tenantID, portfolio.LoanProductInput{
		Name:           "Micro enterprise",
		ShortName:      "ME",
		MinPrincipal:   dec("100"),
		MaxPrincipal:   dec("5000"),
		Defaults:       monthlyTerms("1000", 2),
		AccountingType: accountingType,
		Accounts:       accounts,
	})
	require.NoError(t, err)
	return p
}

func activeClient(t *testing.T, tenantID, officeID uuid.UUID, first string) *portfolio.Client {
	t.Helper()
	c, err := portfolio.NewClient(tenantID, officeID, "CL-"+first, portfolio.ClientInput{Firstname: first, Lastname: "Doe"}, day(2023, 12, 1))
	require.NoError(t, err)
	require.NoError(t, c.Activate(day(2023, 12, 1)))
	return c
}

func activeGroup(t *testing.T, tenantID, officeID uuid.UUID, center *portfolio.Group, name string, members ...*portfolio.Client) *portfolio.Group {
	t.Helper()
	g, err := portfolio.NewGroup(tenantID, officeID, center, name, "", day(2023, 12, 1))
	require.NoError(t, err)
	clients := make([]portfolio.Client, 0, len(members))
	for _, c := range members {
		clients = append(clients, *c)
	}
	if len(clients) > 0 {
		require.NoError(t, g.AssociateClients(clients))
	}
	require.NoError(t, g.Activate(day(2023, 12, 1), center))
	return g
}

// activeLoan submits, approves and disburses a loan on 2024-01-01
func activeLoan(t *testing.T, product *portfolio.LoanProduct, clientID, officeID uuid.UUID) *portfolio.Loan {
	t.Helper()
	l, err := portfolio.SubmitLoan(product.TenantID, "LN-202401-00001", product, portfolio.LoanApplication{
		ClientID:                 &clientID,
		OfficeID:                 officeID,
		Terms:                    product.Defaults,
		SubmittedOn:              day(2024, 1, 1),
		ExpectedDisbursementDate: day(2024, 1, 1),
	}, portfolio.ScheduleContext{})
	require.NoError(t, err)
	require.NoError(t, l.Approve(day(2024, 1, 1), decimal.Zero, portfolio.ScheduleContext{}))
	_, err = l.Disburse(day(2024, 1, 1), portfolio.ScheduleContext{})
	require.NoError(t, err)
	l.PullEvents()
	return l
}
