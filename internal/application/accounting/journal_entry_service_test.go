package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJournalEntryService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()
	cash := newAccount(t, tenantID, "1001", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)
	equity := newAccount(t, tenantID, "3001", accounting.GLAccountTypeEquity, accounting.GLAccountUsageDetail, nil)
	accounts := map[uuid.UUID]*accounting.GLAccount{cash.ID: cash, equity.ID: equity}

	setup := func() (*ledgerMocks, *testutil.MockAccountingRuleRepository, *testutil.RecordingPublisher, *JournalEntryService) {
		m := newLedgerMocks()
		rules := new(testutil.MockAccountingRuleRepository)
		pub := testutil.NewRecordingPublisher()
		svc := NewJournalEntryService(m.scope, m.journal, m.accounts, rules, "usd")
		svc.SetEventPublisher(pub)
		return m, rules, pub, svc
	}

	t.Run("explicit lines", func(t *testing.T) {
		m, _, pub, svc := setup()
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(accounts, nil).Once()
		m.closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(nil, nil).Once()
		m.journal.On("SaveTransaction", ctx, mock.AnythingOfType("*accounting.JournalTransaction")).Return(nil).Once()

		resp, err := svc.Create(ctx, tenantID, CreateJournalEntryRequest{
			OfficeID:        officeID,
			TransactionDate: yesterday(),
			Debits:          []PostingLine{{GLAccountID: cash.ID, Amount: decimal.NewFromInt(500)}},
			Credits:         []PostingLine{{GLAccountID: equity.ID, Amount: decimal.NewFromInt(500)}},
			Comments:        "Opening balance",
		})

		require.NoError(t, err)
		assert.Len(t, resp.Lines, 2)
		assert.Equal(t, "M", resp.TransactionID[:1])
		assert.Equal(t, "USD", resp.Lines[0].Currency)
		assert.True(t, resp.TotalDebits.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, []string{accounting.EventTypeJournalPosted}, pub.Types())
		m.journal.AssertExpectations(t)
	})

	t.Run("closed period", func(t *testing.T) {
		m, _, pub, svc := setup()
		closure := &accounting.GLClosure{OfficeID: officeID, ClosingDate: shared.Today()}
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(accounts, nil).Once()
		m.closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(closure, nil).Once()

		_, err := svc.Create(ctx, tenantID, CreateJournalEntryRequest{
			OfficeID:        officeID,
			TransactionDate: yesterday(),
			Debits:          []PostingLine{{GLAccountID: cash.ID, Amount: decimal.NewFromInt(1)}},
			Credits:         []PostingLine{{GLAccountID: equity.ID, Amount: decimal.NewFromInt(1)}},
		})

		assert.Equal(t, "ACCOUNTING_PERIOD_CLOSED", domainCode(t, err))
		assert.Empty(t, pub.Events())
		m.journal.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything)
	})

	t.Run("rule expansion", func(t *testing.T) {
		m, rules, _, svc := setup()
		rule, err := accounting.NewAccountingRule(tenantID, accounting.AccountingRuleInput{
			Name: "Capital", DebitAccountID: &cash.ID, CreditAccountID: &equity.ID,
		})
		require.NoError(t, err)
		amount := decimal.NewFromInt(250)

		rules.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil).Once()
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(accounts, nil).Once()
		m.closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(nil, nil).Once()
		m.journal.On("SaveTransaction", ctx, mock.MatchedBy(func(txn *accounting.JournalTransaction) bool {
			d, c := txn.Totals()
			return d.Equal(amount) && c.Equal(amount)
		})).Return(nil).Once()

		_, err = svc.Create(ctx, tenantID, CreateJournalEntryRequest{
			OfficeID:         officeID,
			TransactionDate:  yesterday(),
			AccountingRuleID: &rule.ID,
			Amount:           &amount,
		})

		require.NoError(t, err)
		m.journal.AssertExpectations(t)
	})

	t.Run("rule of another office", func(t *testing.T) {
		_, rules, _, svc := setup()
		other := uuid.New()
		rule, err := accounting.NewAccountingRule(tenantID, accounting.AccountingRuleInput{
			Name: "Branch", OfficeID: &other, DebitAccountID: &cash.ID, CreditAccountID: &equity.ID,
		})
		require.NoError(t, err)
		amount := decimal.NewFromInt(1)
		rules.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil).Once()

		_, err = svc.Create(ctx, tenantID, CreateJournalEntryRequest{
			OfficeID: officeID, TransactionDate: yesterday(), AccountingRuleID: &rule.ID, Amount: &amount,
		})

		assert.Equal(t, "ACCOUNTING_RULE_OFFICE_MISMATCH", domainCode(t, err))
	})

	t.Run("amount without rule", func(t *testing.T) {
		_, _, _, svc := setup()
		amount := decimal.NewFromInt(1)
		_, err := svc.Create(ctx, tenantID, CreateJournalEntryRequest{OfficeID: officeID, TransactionDate: yesterday(), Amount: &amount})
		assert.Equal(t, "ACCOUNTING_RULE_REQUIRED", domainCode(t, err))
	})
}

func TestJournalEntryService_Reverse(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()
	cash := newAccount(t, tenantID, "1001", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)
	equity := newAccount(t, tenantID, "3001", accounting.GLAccountTypeEquity, accounting.GLAccountUsageDetail, nil)
	accounts := map[uuid.UUID]*accounting.GLAccount{cash.ID: cash, equity.ID: equity}

	original, err := accounting.NewJournalTransaction(tenantID, accounting.PostingRequest{
		OfficeID:        officeID,
		Currency:        "USD",
		TransactionDate: shared.Today().AddDate(0, 0, -3),
		Debits:          []accounting.Posting{{GLAccountID: cash.ID, Amount: decimal.NewFromInt(80)}},
		Credits:         []accounting.Posting{{GLAccountID: equity.ID, Amount: decimal.NewFromInt(80)}},
		Manual:          true,
	}, accounts, nil)
	require.NoError(t, err)

	m := newLedgerMocks()
	pub := testutil.NewRecordingPublisher()
	svc := NewJournalEntryService(m.scope, m.journal, m.accounts, new(testutil.MockAccountingRuleRepository), "USD")
	svc.SetEventPublisher(pub)

	m.journal.On("FindTransaction", ctx, tenantID, original.ID).Return(original, nil).Once()
	m.closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(nil, nil).Once()
	m.journal.On("SaveReversal", ctx, original, mock.AnythingOfType("*accounting.JournalTransaction")).Return(nil).Once()

	resp, err := svc.Reverse(ctx, tenantID, original.ID, ReverseJournalEntryRequest{})

	require.NoError(t, err)
	assert.NotEqual(t, original.ID, resp.TransactionID)
	assert.Equal(t, "CREDIT", resp.Lines[0].EntryType)
	assert.True(t, original.IsReversed())
	assert.Equal(t, []string{accounting.EventTypeJournalReversed}, pub.Types())

	t.Run("twice", func(t *testing.T) {
		m.journal.On("FindTransaction", ctx, tenantID, original.ID).Return(original, nil).Once()
		m.closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(nil, nil).Once()

		_, err := svc.Reverse(ctx, tenantID, original.ID, ReverseJournalEntryRequest{})
		assert.Equal(t, "JOURNAL_ENTRY_ALREADY_REVERSED", domainCode(t, err))
	})
}

func TestJournalEntryService_ReverseRefusesLoanPostings(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()
	loanID := uuid.New()
	loanPortfolio := newAccount(t, tenantID, "1200", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)
	cash := newAccount(t, tenantID, "1001", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)

	disbursal, err := accounting.NewJournalTransaction(tenantID, accounting.PostingRequest{
		OfficeID:        officeID,
		Currency:        "USD",
		TransactionDate: shared.Today().AddDate(0, 0, -3),
		Debits:          []accounting.Posting{{GLAccountID: loanPortfolio.ID, Amount: decimal.NewFromInt(500)}},
		Credits:         []accounting.Posting{{GLAccountID: cash.ID, Amount: decimal.NewFromInt(500)}},
		EntityType:      accounting.EntityTypeLoan,
		EntityID:        &loanID,
	}, map[uuid.UUID]*accounting.GLAccount{loanPortfolio.ID: loanPortfolio, cash.ID: cash}, nil)
	require.NoError(t, err)
	require.True(t, disbursal.OwnedByLoan())

	m := newLedgerMocks()
	pub := testutil.NewRecordingPublisher()
	svc := NewJournalEntryService(m.scope, m.journal, m.accounts, new(testutil.MockAccountingRuleRepository), "USD")
	svc.SetEventPublisher(pub)
	m.journal.On("FindTransaction", ctx, tenantID, disbursal.ID).Return(disbursal, nil).Once()

	_, err = svc.Reverse(ctx, tenantID, disbursal.ID, ReverseJournalEntryRequest{})

	assert.Equal(t, "JOURNAL_ENTRY_SYSTEM_GENERATED", domainCode(t, err))
	assert.False(t, disbursal.IsReversed())
	assert.Empty(t, pub.Types())
	m.journal.AssertNotCalled(t, "SaveReversal", mock.Anything, mock.Anything, mock.Anything)
}

func TestJournalEntryService_TrialBalance(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	m := newLedgerMocks()
	svc := NewJournalEntryService(m.scope, m.journal, m.accounts, new(testutil.MockAccountingRuleRepository), "USD")

	asOf := shared.Today().AddDate(0, 0, -1)
	m.journal.On("TrialBalance", ctx, tenantID, asOf, (*uuid.UUID)(nil)).Return([]accounting.TrialBalanceLine{
		{GLAccountID: uuid.New(), GLCode: "1001", Type: accounting.GLAccountTypeAsset, Debits: decimal.NewFromInt(900), Credits: decimal.NewFromInt(100)},
		{GLAccountID: uuid.New(), GLCode: "3001", Type: accounting.GLAccountTypeEquity, Debits: decimal.NewFromInt(100), Credits: decimal.NewFromInt(900)},
	}, nil).Once()

	resp, err := svc.TrialBalance(ctx, tenantID, asOf.Format(shared.DateLayout), nil)

	require.NoError(t, err)
	assert.True(t, resp.Balanced)
	assert.True(t, resp.Lines[0].Balance.Equal(decimal.NewFromInt(800)))
	assert.True(t, resp.Lines[1].Balance.Equal(decimal.NewFromInt(800)))
	assert.True(t, resp.TotalDebits.Equal(decimal.NewFromInt(1000)))
	assert.WithinDuration(t, asOf, resp.AsOf, time.Second)
}
