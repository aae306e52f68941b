package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoanService_Submit(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()

	t.Run("client loan", func(t *testing.T) {
		m := newPortfolioMocks()
		svc := m.loanService()
		pub := testutil.NewRecordingPublisher()
		svc.SetEventPublisher(pub)

		product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
		client := activeClient(t, tenantID, officeID, "Ada")
		m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		m.clients.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)
		m.loans.On("GenerateAccountNo", ctx, tenantID).Return("LN-202401-00007", nil)
		m.loans.On("Save", ctx, mock.AnythingOfType("*portfolio.Loan")).Return(nil).Once()

		resp, err := svc.Submit(ctx, tenantID, LoanApplicationRequest{
			ProductID:                product.ID,
			ClientID:                 &client.ID,
			SubmittedOn:              "2024-01-01",
			ExpectedDisbursementDate: "2024-01-01",
			Terms:                    LoanTermsRequest{Principal: dec("800")},
		})

		require.NoError(t, err)
		assert.Equal(t, "LN-202401-00007", resp.AccountNo)
		assert.Equal(t, string(portfolio.LoanSubmitted), resp.Status)
		assert.Equal(t, officeID, resp.OfficeID)
		require.NotNil(t, resp.Schedule)
		assert.Len(t, resp.Schedule.Periods, 2)
		assert.True(t, resp.Schedule.TotalPrincipal.Equal(dec("800")))
		assert.Equal(t, []string{portfolio.EventTypeLoanStatusChanged}, pub.Types())
		m.loans.AssertExpectations(t)
	})

	t.Run("inactive client", func(t *testing.T) {
		m := newPortfolioMocks()
		product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
		client, err := portfolio.NewClient(tenantID, officeID, "CL-1", portfolio.ClientInput{Fullname: "Pending Ltd"}, day(2024, 1, 1))
		require.NoError(t, err)
		m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		m.clients.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)

		_, err = m.loanService().Submit(ctx, tenantID, LoanApplicationRequest{
			ProductID: product.ID, ClientID: &client.ID, ExpectedDisbursementDate: "2024-01-01",
		})

		assert.Equal(t, "CLIENT_NOT_ACTIVE", domainCode(t, err))
		m.loans.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("client outside the group", func(t *testing.T) {
		m := newPortfolioMocks()
		product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
		member := activeClient(t, tenantID, officeID, "Member")
		stranger := activeClient(t, tenantID, officeID, "Stranger")
		group := activeGroup(t, tenantID, officeID, nil, "Sunrise", member)
		m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		m.groups.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)

		_, err := m.loanService().Submit(ctx, tenantID, LoanApplicationRequest{
			ProductID: product.ID, ClientID: &stranger.ID, GroupID: &group.ID, ExpectedDisbursementDate: "2024-01-01",
		})

		assert.Equal(t, "CLIENT_NOT_MEMBER", domainCode(t, err))
	})

	t.Run("officer must serve loans", func(t *testing.T) {
		m := newPortfolioMocks()
		product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
		client := activeClient(t, tenantID, officeID, "Ada")
		clerk, err := organisation.NewStaff(tenantID, officeID, "Desk", "Clerk")
		require.NoError(t, err)
		m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		m.clients.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)
		m.staff.On("FindByIDForTenant", ctx, tenantID, clerk.ID).Return(clerk, nil)

		_, err = m.loanService().Submit(ctx, tenantID, LoanApplicationRequest{
			ProductID: product.ID, ClientID: &client.ID, LoanOfficerID: &clerk.ID, ExpectedDisbursementDate: "2024-01-01",
		})

		assert.Equal(t, "STAFF_NOT_LOAN_OFFICER", domainCode(t, err))
	})

	t.Run("no borrower", func(t *testing.T) {
		m := newPortfolioMocks()
		product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
		m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)

		_, err := m.loanService().Submit(ctx, tenantID, LoanApplicationRequest{ProductID: product.ID, ExpectedDisbursementDate: "2024-01-01"})

		assert.Equal(t, "LOAN_BORROWER_REQUIRED", domainCode(t, err))
	})
}

func TestLoanService_CalculateSchedule(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	m := newPortfolioMocks()
	product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
	client := activeClient(t, tenantID, uuid.New(), "Ada")
	m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	m.clients.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)

	resp, err := m.loanService().CalculateSchedule(ctx, tenantID, LoanApplicationRequest{
		ProductID:                product.ID,
		ClientID:                 &client.ID,
		ExpectedDisbursementDate: "2024-01-01",
		Terms:                    LoanTermsRequest{NumberOfRepayments: 4},
	})

	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Currency)
	assert.Len(t, resp.Periods, 4)
	assert.True(t, resp.TotalPrincipal.Equal(dec("1000")))
	assert.True(t, resp.TotalInterest.IsPositive())
	m.loans.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.loans.AssertNotCalled(t, "GenerateAccountNo", mock.Anything, mock.Anything)
}

func TestLoanService_LifecycleWithoutLedger(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	m := newPortfolioMocks()
	svc := m.loanService()
	product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
	clientID := uuid.New()
	loan, err := portfolio.SubmitLoan(tenantID, "LN-1", product, portfolio.LoanApplication{
		ClientID: &clientID, OfficeID: uuid.New(), Terms: product.Defaults,
		SubmittedOn: day(2024, 1, 1), ExpectedDisbursementDate: day(2024, 1, 1),
	}, portfolio.ScheduleContext{})
	require.NoError(t, err)
	loan.PullEvents()

	m.loans.On("FindByIDForTenant", ctx, tenantID, loan.ID).Return(loan, nil)
	m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	m.loans.On("Save", ctx, loan).Return(nil)

	approved, err := svc.Approve(ctx, tenantID, loan.ID, LoanActionRequest{Date: "2024-01-01", ApprovedPrincipal: dec("600")})
	require.NoError(t, err)
	assert.Equal(t, string(portfolio.LoanApproved), approved.Status)
	assert.True(t, approved.ApprovedPrincipal.Equal(dec("600")))

	_, err = svc.Approve(ctx, tenantID, loan.ID, LoanActionRequest{Date: "2024-01-01"})
	assert.Error(t, err)

	disbursed, err := svc.Disburse(ctx, tenantID, loan.ID, LoanActionRequest{Date: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, string(portfolio.LoanActive), disbursed.Status)
	require.Len(t, disbursed.Transactions, 1)
	assert.Empty(t, disbursed.Transactions[0].JournalTransactionID)

	repaid, err := svc.MakeRepayment(ctx, tenantID, loan.ID, LoanTransactionRequest{Date: "2024-02-01", Amount: dec("100"), ReceiptNumber: "R-1"})
	require.NoError(t, err)
	assert.Equal(t, "R-1", repaid.ReceiptNumber)
	assert.True(t, repaid.InterestPortion.Add(repaid.PrincipalPortion).Equal(dec("100")))

	reversed, err := svc.ReverseTransaction(ctx, tenantID, loan.ID, repaid.ID, nil)
	require.NoError(t, err)
	assert.True(t, reversed.Reversed)

	m.journal.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything)
}

func TestLoanService_CashAccounting(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()
	accounts := newLedgerAccounts(t, tenantID)
	product := newProduct(t, tenantID, portfolio.AccountingCash, accounts.mapping())

	approvedLoan := func(t *testing.T) *portfolio.Loan {
		clientID := uuid.New()
		l, err := portfolio.SubmitLoan(tenantID, "LN-2", product, portfolio.LoanApplication{
			ClientID: &clientID, OfficeID: officeID, Terms: product.Defaults,
			SubmittedOn: day(2024, 1, 1), ExpectedDisbursementDate: day(2024, 1, 1),
		}, portfolio.ScheduleContext{})
		require.NoError(t, err)
		require.NoError(t, l.Approve(day(2024, 1, 1), dec("0"), portfolio.ScheduleContext{}))
		l.PullEvents()
		return l
	}

	t.Run("disbursement posts portfolio against fund source", func(t *testing.T) {
		m := newPortfolioMocks()
		svc := m.loanService()
		pub := testutil.NewRecordingPublisher()
		svc.SetEventPublisher(pub)
		loan := approvedLoan(t)

		m.loans.On("FindByIDForTenant", ctx, tenantID, loan.ID).Return(loan, nil)
		m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(accounts.byID(), nil)
		m.closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(nil, nil)
		m.journal.On("SaveTransaction", ctx, mock.MatchedBy(func(txn *accounting.JournalTransaction) bool {
			d, c := txn.Totals()
			if !d.Equal(dec("1000")) || !c.Equal(dec("1000")) {
				return false
			}
			for _, line := range txn.Lines {
				if line.EntryType == accounting.EntryTypeDebit && line.GLAccountID != accounts.portfolio.ID {
					return false
				}
				if line.EntryType == accounting.EntryTypeCredit && line.GLAccountID != accounts.fund.ID {
					return false
				}
			}
			return true
		})).Return(nil).Once()
		m.loans.On("Save", ctx, loan).Return(nil).Once()

		resp, err := svc.Disburse(ctx, tenantID, loan.ID, LoanActionRequest{Date: "2024-01-01"})

		require.NoError(t, err)
		require.Len(t, resp.Transactions, 1)
		assert.NotEmpty(t, resp.Transactions[0].JournalTransactionID)
		assert.Equal(t, []string{
			portfolio.EventTypeLoanStatusChanged,
			portfolio.EventTypeLoanTransaction,
			accounting.EventTypeJournalPosted,
		}, pub.Types())
		m.journal.AssertExpectations(t)
	})

	t.Run("journal failure leaves the loan unsaved", func(t *testing.T) {
		m := newPortfolioMocks()
		svc := m.loanService()
		pub := testutil.NewRecordingPublisher()
		svc.SetEventPublisher(pub)
		loan := approvedLoan(t)

		m.loans.On("FindByIDForTenant", ctx, tenantID, loan.ID).Return(loan, nil)
		m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(accounts.byID(), nil)
		m.closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(nil, nil)
		m.journal.On("SaveTransaction", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := svc.Disburse(ctx, tenantID, loan.ID, LoanActionRequest{Date: "2024-01-01"})

		require.Error(t, err)
		m.loans.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, pub.Events())
	})

	t.Run("undo disbursal reverses its journal", func(t *testing.T) {
		m := newPortfolioMocks()
		svc := m.loanService()
		pub := testutil.NewRecordingPublisher()
		svc.SetEventPublisher(pub)
		loan := activeLoan(t, product, uuid.New(), officeID)

		req, err := loanPosting(loan, product, &loan.Transactions[0])
		require.NoError(t, err)
		original, err := accounting.NewJournalTransaction(tenantID, *req, accounts.byID(), nil)
		require.NoError(t, err)
		loan.Transactions[0].JournalTransactionID = original.ID

		m.loans.On("FindByIDForTenant", ctx, tenantID, loan.ID).Return(loan, nil)
		m.products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		m.journal.On("FindTransaction", ctx, tenantID, original.ID).Return(original, nil).Once()
		m.closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(nil, nil)
		m.journal.On("SaveReversal", ctx, original, mock.AnythingOfType("*accounting.JournalTransaction")).Return(nil).Once()
		m.loans.On("Save", ctx, loan).Return(nil).Once()

		resp, err := svc.UndoDisbursal(ctx, tenantID, loan.ID, LoanActionRequest{})

		require.NoError(t, err)
		assert.Equal(t, string(portfolio.LoanApproved), resp.Status)
		assert.Contains(t, pub.Types(), accounting.EventTypeJournalReversed)
		m.journal.AssertExpectations(t)
	})

	t.Run("overpayment needs a liability account", func(t *testing.T) {
		noOverpayment := accounts.mapping()
		noOverpayment.Overpayment = nil
		strict := newProduct(t, tenantID, portfolio.AccountingCash, noOverpayment)
		loan := activeLoan(t, strict, uuid.New(), officeID)
		txn, err := loan.MakeRepayment(day(2024, 2, 1), dec("5000"), "", "")
		require.NoError(t, err)

		_, err = loanPosting(loan, strict, txn)

		assert.Equal(t, "LOAN_PRODUCT_ACCOUNTS_MISSING", domainCode(t, err))
	})
}

func TestLoanPosting(t *testing.T) {
	tenantID := uuid.New()
	accounts := newLedgerAccounts(t, tenantID)

	t.Run("cash repayment credits income", func(t *testing.T) {
		product := newProduct(t, tenantID, portfolio.AccountingCash, accounts.mapping())
		loan := activeLoan(t, product, uuid.New(), uuid.New())
		txn, err := loan.MakeRepayment(day(2024, 2, 1), dec("200"), "", "")
		require.NoError(t, err)

		req, err := loanPosting(loan, product, txn)

		require.NoError(t, err)
		require.Len(t, req.Debits, 1)
		assert.Equal(t, accounts.fund.ID, req.Debits[0].GLAccountID)
		credited := map[uuid.UUID]bool{}
		for _, c := range req.Credits {
			credited[c.GLAccountID] = true
		}
		assert.True(t, credited[accounts.portfolio.ID])
		assert.True(t, credited[accounts.income.ID])
		assert.False(t, credited[accounts.receivable.ID])
		assert.Equal(t, accounting.EntityTypeLoan, req.EntityType)
	})

	t.Run("cash waiver moves nothing", func(t *testing.T) {
		product := newProduct(t, tenantID, portfolio.AccountingCash, accounts.mapping())
		loan := activeLoan(t, product, uuid.New(), uuid.New())
		txn, err := loan.WaiveInterest(day(2024, 2, 1), dec("5"), "")
		require.NoError(t, err)

		req, err := loanPosting(loan, product, txn)

		require.NoError(t, err)
		assert.Nil(t, req)
	})

	t.Run("accrual write-off clears receivable", func(t *testing.T) {
		product := newProduct(t, tenantID, portfolio.AccountingAccrualPeriodic, accounts.mapping())
		loan := activeLoan(t, product, uuid.New(), uuid.New())
		txn, err := loan.WriteOff(day(2024, 3, 15), "")
		require.NoError(t, err)

		req, err := loanPosting(loan, product, txn)

		require.NoError(t, err)
		require.Len(t, req.Debits, 1)
		assert.Equal(t, accounts.writeOff.ID, req.Debits[0].GLAccountID)
		var credits = req.Credits[0].Amount
		for _, c := range req.Credits[1:] {
			credits = credits.Add(c.Amount)
		}
		assert.True(t, credits.Equal(req.Debits[0].Amount))
	})
}

func TestLoanService_RescheduleOffices(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()
	m := newPortfolioMocks()
	product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
	ok := activeLoan(t, product, uuid.New(), officeID)
	missing := uuid.New()

	m.loans.On("FindOpenIDsByOffices", ctx, tenantID, []uuid.UUID{officeID}).Return([]uuid.UUID{ok.ID, missing}, nil)
	m.loans.On("FindByIDForTenant", ctx, tenantID, ok.ID).Return(ok, nil)
	m.loans.On("FindByIDForTenant", ctx, tenantID, missing).Return(nil, shared.NotFound("Loan"))
	m.loans.On("Save", ctx, ok).Return(nil).Once()

	count, err := m.loanService().RescheduleOffices(ctx, tenantID, []uuid.UUID{officeID})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	m.loans.AssertExpectations(t)
}

func TestLoanService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	m := newPortfolioMocks()
	product := newProduct(t, tenantID, portfolio.AccountingNone, portfolio.ProductAccounts{})
	loan := activeLoan(t, product, uuid.New(), uuid.New())

	m.loans.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f portfolio.LoanFilter) bool {
		return len(f.Statuses) == 1 && f.Statuses[0] == portfolio.LoanActive
	})).Return([]portfolio.Loan{*loan}, int64(1), nil)

	loans, total, err := m.loanService().List(ctx, tenantID, LoanListFilter{Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, loans, 1)
	assert.Nil(t, loans[0].Schedule)

	_, _, err = m.loanService().List(ctx, tenantID, LoanListFilter{Status: "SLEEPING"})
	assert.Equal(t, "INVALID_STATUS", domainCode(t, err))
}
