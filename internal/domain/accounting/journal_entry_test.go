package accounting

import (
	"testing"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerFixture(t *testing.T) (uuid.UUID, *GLAccount, *GLAccount, map[uuid.UUID]*GLAccount) {
	tenant := uuid.New()
	cash := detail(t, tenant, "1001", GLAccountTypeAsset, nil)
	income := detail(t, tenant, "4001", GLAccountTypeIncome, nil)
	return tenant, cash, income, map[uuid.UUID]*GLAccount{cash.ID: cash, income.ID: income}
}

func TestNewJournalTransaction(t *testing.T) {
	tenant, cash, income, accounts := ledgerFixture(t)
	office := uuid.New()
	yesterday := shared.Today().AddDate(0, 0, -1)

	req := PostingRequest{
		OfficeID:        office,
		Currency:        "kes",
		TransactionDate: yesterday,
		Debits:          []Posting{{GLAccountID: cash.ID, Amount: decimal.NewFromInt(100)}},
		Credits:         []Posting{{GLAccountID: income.ID, Amount: decimal.NewFromInt(100)}},
		Manual:          true,
	}

	t.Run("balanced entry", func(t *testing.T) {
		txn, err := NewJournalTransaction(tenant, req, accounts, nil)
		require.NoError(t, err)
		require.Len(t, txn.Lines, 2)
		assert.Equal(t, byte('M'), txn.ID[0])
		assert.Len(t, txn.ID, 13)
		assert.Equal(t, "KES", txn.Lines[0].Currency)
		d, c := txn.Totals()
		assert.True(t, d.Equal(c))
	})

	t.Run("unbalanced entry", func(t *testing.T) {
		bad := req
		bad.Credits = []Posting{{GLAccountID: income.ID, Amount: decimal.NewFromInt(90)}}
		_, err := NewJournalTransaction(tenant, bad, accounts, nil)
		require.Error(t, err)
		assert.Equal(t, "JOURNAL_ENTRY_UNBALANCED", err.(*shared.DomainError).Code)
	})

	t.Run("future date", func(t *testing.T) {
		bad := req
		bad.TransactionDate = time.Now().AddDate(0, 0, 2)
		_, err := NewJournalTransaction(tenant, bad, accounts, nil)
		assert.Error(t, err)
	})

	t.Run("closed period", func(t *testing.T) {
		closure := &GLClosure{OfficeID: office, ClosingDate: yesterday}
		_, err := NewJournalTransaction(tenant, req, accounts, closure)
		require.Error(t, err)
		assert.Equal(t, "ACCOUNTING_PERIOD_CLOSED", err.(*shared.DomainError).Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		bad := req
		bad.Debits = []Posting{{GLAccountID: uuid.New(), Amount: decimal.NewFromInt(100)}}
		_, err := NewJournalTransaction(tenant, bad, accounts, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		bad := req
		bad.Debits = []Posting{{GLAccountID: cash.ID, Amount: decimal.Zero}}
		_, err := NewJournalTransaction(tenant, bad, accounts, nil)
		assert.Error(t, err)
	})

	t.Run("system entry bypasses manual flag", func(t *testing.T) {
		cash.ManualEntriesAllowed = false
		defer func() { cash.ManualEntriesAllowed = true }()
		_, err := NewJournalTransaction(tenant, req, accounts, nil)
		assert.Error(t, err)

		sys := req
		sys.Manual = false
		txn, err := NewJournalTransaction(tenant, sys, accounts, nil)
		require.NoError(t, err)
		assert.Equal(t, byte('S'), txn.ID[0])
	})
}

func TestJournalTransactionReverse(t *testing.T) {
	tenant, cash, income, accounts := ledgerFixture(t)
	req := PostingRequest{
		OfficeID:        uuid.New(),
		Currency:        "USD",
		TransactionDate: shared.Today(),
		Debits:          []Posting{{GLAccountID: cash.ID, Amount: decimal.NewFromInt(40)}},
		Credits:         []Posting{{GLAccountID: income.ID, Amount: decimal.NewFromInt(40)}},
		Manual:          true,
	}
	txn, err := NewJournalTransaction(tenant, req, accounts, nil)
	require.NoError(t, err)

	rev, err := txn.Reverse(shared.Today(), "", nil, nil)
	require.NoError(t, err)
	require.Len(t, rev.Lines, 2)
	assert.Equal(t, EntryTypeCredit, rev.Lines[0].EntryType)
	assert.Equal(t, cash.ID, rev.Lines[0].GLAccountID)
	assert.Equal(t, txn.ID, rev.Lines[0].ReversalTransactionID)
	assert.True(t, txn.Lines[0].Reversed)
	assert.Equal(t, rev.ID, txn.Lines[0].ReversalTransactionID)

	_, err = txn.Reverse(shared.Today(), "", nil, nil)
	assert.Error(t, err, "second reversal rejected")
	_, err = rev.Reverse(shared.Today(), "", nil, nil)
	assert.Error(t, err, "reversal cannot itself be reversed")
}

func TestTrialBalanceLine(t *testing.T) {
	asset := TrialBalanceLine{Type: GLAccountTypeAsset, Debits: decimal.NewFromInt(100), Credits: decimal.NewFromInt(30)}
	assert.True(t, asset.Balance().Equal(decimal.NewFromInt(70)))

	liability := TrialBalanceLine{Type: GLAccountTypeLiability, Debits: decimal.NewFromInt(10), Credits: decimal.NewFromInt(50)}
	assert.True(t, liability.Balance().Equal(decimal.NewFromInt(40)))
}
