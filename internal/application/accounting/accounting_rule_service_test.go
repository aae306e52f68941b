package accounting

import (
	"context"
	"testing"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountingRuleService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	cash := newAccount(t, tenantID, "1001", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)
	header := newAccount(t, tenantID, "3", accounting.GLAccountTypeEquity, accounting.GLAccountUsageHeader, nil)

	t.Run("fixed debit, tagged credit", func(t *testing.T) {
		rules := new(testutil.MockAccountingRuleRepository)
		accounts := new(testutil.MockGLAccountRepository)
		svc := NewAccountingRuleService(rules, accounts)

		rules.On("ExistsByName", ctx, tenantID, "Cash in", (*uuid.UUID)(nil)).Return(false, nil).Once()
		accounts.On("FindByIDs", ctx, tenantID, []uuid.UUID{cash.ID}).Return(map[uuid.UUID]*accounting.GLAccount{cash.ID: cash}, nil).Once()
		rules.On("Save", ctx, mock.AnythingOfType("*accounting.AccountingRule")).Return(nil).Once()

		resp, err := svc.Create(ctx, tenantID, AccountingRuleRequest{
			Name: "Cash in", DebitAccountID: &cash.ID, CreditTags: []string{"capital"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"capital"}, resp.CreditTags)
	})

	t.Run("header account", func(t *testing.T) {
		rules := new(testutil.MockAccountingRuleRepository)
		accounts := new(testutil.MockGLAccountRepository)
		svc := NewAccountingRuleService(rules, accounts)

		rules.On("ExistsByName", ctx, tenantID, "Bad", (*uuid.UUID)(nil)).Return(false, nil).Once()
		accounts.On("FindByIDs", ctx, tenantID, mock.Anything).
			Return(map[uuid.UUID]*accounting.GLAccount{cash.ID: cash, header.ID: header}, nil).Once()

		_, err := svc.Create(ctx, tenantID, AccountingRuleRequest{Name: "Bad", DebitAccountID: &cash.ID, CreditAccountID: &header.ID})

		assert.Equal(t, "GL_ACCOUNT_NOT_DETAIL", domainCode(t, err))
		rules.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate name", func(t *testing.T) {
		rules := new(testutil.MockAccountingRuleRepository)
		svc := NewAccountingRuleService(rules, new(testutil.MockGLAccountRepository))
		rules.On("ExistsByName", ctx, tenantID, "Dup", (*uuid.UUID)(nil)).Return(true, nil).Once()

		_, err := svc.Create(ctx, tenantID, AccountingRuleRequest{Name: "Dup", DebitAccountID: &cash.ID, CreditTags: []string{"x"}})

		assert.Equal(t, "ACCOUNTING_RULE_NAME_EXISTS", domainCode(t, err))
	})
}

func TestGLClosureService(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()
	closures := new(testutil.MockGLClosureRepository)
	offices := new(testutil.MockOfficeRepository)
	svc := NewGLClosureService(closures, offices)

	t.Run("create after latest", func(t *testing.T) {
		latest := &accounting.GLClosure{OfficeID: officeID, ClosingDate: shared.Today().AddDate(0, 0, -10)}
		offices.On("FindByIDForTenant", ctx, tenantID, officeID).Return(nil, nil).Once()
		closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(latest, nil).Once()
		closures.On("Save", ctx, mock.AnythingOfType("*accounting.GLClosure")).Return(nil).Once()

		resp, err := svc.Create(ctx, tenantID, CreateGLClosureRequest{OfficeID: officeID, ClosingDate: yesterday(), Comments: "Month end"})

		require.NoError(t, err)
		assert.Equal(t, "Month end", resp.Comments)
	})

	t.Run("delete only latest", func(t *testing.T) {
		older, err := accounting.NewGLClosure(tenantID, officeID, shared.Today().AddDate(0, 0, -20), "", nil)
		require.NoError(t, err)
		newer, err := accounting.NewGLClosure(tenantID, officeID, shared.Today().AddDate(0, 0, -5), "", older)
		require.NoError(t, err)

		closures.On("FindByIDForTenant", ctx, tenantID, older.ID).Return(older, nil).Once()
		closures.On("FindLatestForOffice", ctx, tenantID, officeID).Return(newer, nil).Once()

		err = svc.Delete(ctx, tenantID, older.ID)
		assert.Equal(t, "GL_CLOSURE_NOT_LATEST", domainCode(t, err))
	})
}
