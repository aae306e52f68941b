package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.GLAccountModel{},
		&models.JournalEntryModel{},
		&models.GLClosureModel{},
		&models.ClientModel{},
	)
	require.NoError(t, err)
	return db
}

func newTestAccount(t *testing.T, tenantID uuid.UUID, code string, typ accounting.GLAccountType, usage accounting.GLAccountUsage, parent *accounting.GLAccount) *accounting.GLAccount {
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

func TestGormJournalEntryRepository_PostAndReverse(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	accounts := NewGormGLAccountRepository(db)
	journal := NewGormJournalEntryRepository(db)

	tenantID := uuid.New()
	officeID := uuid.New()
	cash := newTestAccount(t, tenantID, "1001", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)
	income := newTestAccount(t, tenantID, "4001", accounting.GLAccountTypeIncome, accounting.GLAccountUsageDetail, nil)
	require.NoError(t, accounts.Save(ctx, cash))
	require.NoError(t, accounts.Save(ctx, income))

	txn, err := accounting.NewJournalTransaction(tenantID, accounting.PostingRequest{
		OfficeID:        officeID,
		Currency:        "USD",
		TransactionDate: shared.Today(),
		Debits:          []accounting.Posting{{GLAccountID: cash.ID, Amount: decimal.NewFromInt(150)}},
		Credits:         []accounting.Posting{{GLAccountID: income.ID, Amount: decimal.NewFromInt(150)}},
		Manual:          true,
	}, map[uuid.UUID]*accounting.GLAccount{cash.ID: cash, income.ID: income}, nil)
	require.NoError(t, err)
	require.NoError(t, journal.SaveTransaction(ctx, txn))

	t.Run("finds every line of the transaction", func(t *testing.T) {
		found, err := journal.FindTransaction(ctx, tenantID, txn.ID)
		require.NoError(t, err)
		assert.Len(t, found.Lines, 2)
		assert.False(t, found.IsReversed())
	})

	t.Run("unknown transaction is not found", func(t *testing.T) {
		_, err := journal.FindTransaction(ctx, tenantID, "M000000000000")
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("account with postings is reported", func(t *testing.T) {
		used, err := journal.ExistsForAccount(ctx, tenantID, cash.ID)
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("trial balance sums each side", func(t *testing.T) {
		lines, err := journal.TrialBalance(ctx, tenantID, shared.Today(), nil)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "1001", lines[0].GLCode)
		assert.True(t, lines[0].Debits.Equal(decimal.NewFromInt(150)))
		assert.True(t, lines[0].Credits.IsZero())
		assert.True(t, lines[1].Credits.Equal(decimal.NewFromInt(150)))
	})

	t.Run("second reversal of the same lines is rejected", func(t *testing.T) {
		first, err := journal.FindTransaction(ctx, tenantID, txn.ID)
		require.NoError(t, err)
		second, err := journal.FindTransaction(ctx, tenantID, txn.ID)
		require.NoError(t, err)

		rev1, err := first.Reverse(shared.Today(), "", nil, nil)
		require.NoError(t, err)
		require.NoError(t, journal.SaveReversal(ctx, first, rev1))

		rev2, err := second.Reverse(shared.Today(), "", nil, nil)
		require.NoError(t, err)
		err = journal.SaveReversal(ctx, second, rev2)
		require.Error(t, err)
		assert.Equal(t, "JOURNAL_ENTRY_ALREADY_REVERSED", err.(*shared.DomainError).Code)

		_, err = journal.FindTransaction(ctx, tenantID, rev2.ID)
		assert.True(t, shared.IsNotFound(err), "rejected reversal must be rolled back")

		reloaded, err := journal.FindTransaction(ctx, tenantID, txn.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.IsReversed())
		for _, line := range reloaded.Lines {
			assert.Equal(t, rev1.ID, line.ReversalTransactionID)
		}
	})

	t.Run("reversal nets the trial balance to zero", func(t *testing.T) {
		lines, err := journal.TrialBalance(ctx, tenantID, shared.Today(), nil)
		require.NoError(t, err)
		for _, line := range lines {
			assert.True(t, line.Balance().IsZero(), line.GLCode)
		}
	})
}

func TestGormGLAccountRepository_RewriteHierarchy(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	repo := NewGormGLAccountRepository(db)
	tenantID := uuid.New()

	assets := newTestAccount(t, tenantID, "1000", accounting.GLAccountTypeAsset, accounting.GLAccountUsageHeader, nil)
	current := newTestAccount(t, tenantID, "1100", accounting.GLAccountTypeAsset, accounting.GLAccountUsageHeader, nil)
	cash := newTestAccount(t, tenantID, "1101", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, current)
	for _, a := range []*accounting.GLAccount{assets, current, cash} {
		require.NoError(t, repo.Save(ctx, a))
	}

	oldPrefix := current.Hierarchy
	newPrefix := assets.Hierarchy + current.ID.String() + "."
	require.NoError(t, repo.RewriteHierarchy(ctx, tenantID, oldPrefix, newPrefix))

	moved, err := repo.FindByIDForTenant(ctx, tenantID, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, newPrefix+cash.ID.String()+".", moved.Hierarchy)

	self, err := repo.FindByIDForTenant(ctx, tenantID, current.ID)
	require.NoError(t, err)
	assert.Equal(t, oldPrefix, self.Hierarchy, "the moved node itself is saved by the caller")

	hasChildren, err := repo.HasChildren(ctx, tenantID, current.ID)
	require.NoError(t, err)
	assert.True(t, hasChildren)
}

func TestGormGLAccountRepository_ExistsByGLCode(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	repo := NewGormGLAccountRepository(db)
	tenantID := uuid.New()

	cash := newTestAccount(t, tenantID, "1001", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)
	require.NoError(t, repo.Save(ctx, cash))

	exists, err := repo.ExistsByGLCode(ctx, tenantID, "1001", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByGLCode(ctx, tenantID, "1001", &cash.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByGLCode(ctx, uuid.New(), "1001", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormGLClosureRepository_FindLatestForOffice(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	repo := NewGormGLClosureRepository(db)
	tenantID := uuid.New()
	officeID := uuid.New()

	latest, err := repo.FindLatestForOffice(ctx, tenantID, officeID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := accounting.NewGLClosure(tenantID, officeID, shared.Today().AddDate(0, 0, -10), "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))
	second, err := accounting.NewGLClosure(tenantID, officeID, shared.Today().AddDate(0, 0, -3), "", first)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	latest, err = repo.FindLatestForOffice(ctx, tenantID, officeID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestGormClientRepository_GenerateAccountNo(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	repo := NewGormClientRepository(db)
	tenantID := uuid.New()
	prefix := "CL-" + time.Now().Format("200601") + "-"

	no, err := repo.GenerateAccountNo(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, prefix+"00001", no)

	client, err := portfolio.NewClient(tenantID, uuid.New(), prefix+"00007", portfolio.ClientInput{Firstname: "Amina", Lastname: "Otieno"}, shared.Today())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, client))

	no, err = repo.GenerateAccountNo(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, prefix+"00008", no)

	other, err := repo.GenerateAccountNo(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, prefix+"00001", other, "sequences are per tenant")
}
