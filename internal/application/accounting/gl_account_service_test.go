package accounting

import (
	"context"
	"errors"
	"testing"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGLAccountService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("duplicate gl code", func(t *testing.T) {
		m := newLedgerMocks()
		svc := NewGLAccountService(m.accounts, m.journal)
		m.accounts.On("ExistsByGLCode", ctx, tenantID, "1000", (*uuid.UUID)(nil)).Return(true, nil).Once()

		resp, err := svc.Create(ctx, tenantID, GLAccountRequest{Name: "Cash", GLCode: "1000", Type: "ASSET", Usage: "DETAIL"})

		assert.Nil(t, resp)
		assert.Equal(t, "GL_CODE_EXISTS", domainCode(t, err))
	})

	t.Run("under header parent", func(t *testing.T) {
		m := newLedgerMocks()
		svc := NewGLAccountService(m.accounts, m.journal)
		parent := newAccount(t, tenantID, "1", accounting.GLAccountTypeAsset, accounting.GLAccountUsageHeader, nil)
		m.accounts.On("ExistsByGLCode", ctx, tenantID, "1000", (*uuid.UUID)(nil)).Return(false, nil).Once()
		m.accounts.On("FindByIDForTenant", ctx, tenantID, parent.ID).Return(parent, nil).Once()
		m.accounts.On("Save", ctx, mock.AnythingOfType("*accounting.GLAccount")).Return(nil).Once()

		resp, err := svc.Create(ctx, tenantID, GLAccountRequest{Name: "Cash", GLCode: "1000", Type: "ASSET", Usage: "DETAIL", ParentID: &parent.ID})

		require.NoError(t, err)
		assert.Equal(t, &parent.ID, resp.ParentID)
		assert.Equal(t, parent.Hierarchy+resp.ID.String()+".", resp.Hierarchy)
		m.accounts.AssertExpectations(t)
	})

	t.Run("missing parent", func(t *testing.T) {
		m := newLedgerMocks()
		svc := NewGLAccountService(m.accounts, m.journal)
		parentID := uuid.New()
		m.accounts.On("ExistsByGLCode", ctx, tenantID, "1000", (*uuid.UUID)(nil)).Return(false, nil).Once()
		m.accounts.On("FindByIDForTenant", ctx, tenantID, parentID).Return(nil, shared.ErrNotFound).Once()

		_, err := svc.Create(ctx, tenantID, GLAccountRequest{Name: "Cash", GLCode: "1000", Type: "ASSET", Usage: "DETAIL", ParentID: &parentID})

		assert.Equal(t, "INVALID_PARENT", domainCode(t, err))
	})
}

func TestGLAccountService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("moving a header rewrites descendants", func(t *testing.T) {
		m := newLedgerMocks()
		svc := NewGLAccountService(m.accounts, m.journal)
		newParent := newAccount(t, tenantID, "2", accounting.GLAccountTypeAsset, accounting.GLAccountUsageHeader, nil)
		account := newAccount(t, tenantID, "11", accounting.GLAccountTypeAsset, accounting.GLAccountUsageHeader, nil)
		oldHierarchy := account.Hierarchy

		m.accounts.On("FindByIDForTenant", ctx, tenantID, account.ID).Return(account, nil).Once()
		m.accounts.On("FindByIDForTenant", ctx, tenantID, newParent.ID).Return(newParent, nil).Once()
		m.accounts.On("HasChildren", ctx, tenantID, account.ID).Return(true, nil).Once()
		m.journal.On("ExistsForAccount", ctx, tenantID, account.ID).Return(false, nil).Once()
		m.accounts.On("Save", ctx, account).Return(nil).Once()
		m.accounts.On("RewriteHierarchy", ctx, tenantID, oldHierarchy, newParent.Hierarchy+account.ID.String()+".").Return(nil).Once()

		resp, err := svc.Update(ctx, tenantID, account.ID, GLAccountRequest{
			Name: "Moved", GLCode: "11", Type: "ASSET", Usage: "HEADER", ParentID: &newParent.ID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Moved", resp.Name)
		m.accounts.AssertExpectations(t)
	})

	t.Run("detail with entries cannot become header", func(t *testing.T) {
		m := newLedgerMocks()
		svc := NewGLAccountService(m.accounts, m.journal)
		account := newAccount(t, tenantID, "1001", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)
		m.accounts.On("FindByIDForTenant", ctx, tenantID, account.ID).Return(account, nil).Once()
		m.accounts.On("HasChildren", ctx, tenantID, account.ID).Return(false, nil).Once()
		m.journal.On("ExistsForAccount", ctx, tenantID, account.ID).Return(true, nil).Once()

		_, err := svc.Update(ctx, tenantID, account.ID, GLAccountRequest{Name: "x", GLCode: "1001", Type: "ASSET", Usage: "HEADER"})

		assert.Equal(t, "GL_ACCOUNT_HAS_ENTRIES", domainCode(t, err))
		m.accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestGLAccountService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	m := newLedgerMocks()
	svc := NewGLAccountService(m.accounts, m.journal)
	account := newAccount(t, tenantID, "1001", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, nil)

	t.Run("blocked by children", func(t *testing.T) {
		m.accounts.On("FindByIDForTenant", ctx, tenantID, account.ID).Return(account, nil).Once()
		m.accounts.On("HasChildren", ctx, tenantID, account.ID).Return(true, nil).Once()
		m.journal.On("ExistsForAccount", ctx, tenantID, account.ID).Return(false, nil).Once()

		err := svc.Delete(ctx, tenantID, account.ID)
		assert.Equal(t, "GL_ACCOUNT_HAS_CHILDREN", domainCode(t, err))
	})

	t.Run("unused account", func(t *testing.T) {
		m.accounts.On("FindByIDForTenant", ctx, tenantID, account.ID).Return(account, nil).Once()
		m.accounts.On("HasChildren", ctx, tenantID, account.ID).Return(false, nil).Once()
		m.journal.On("ExistsForAccount", ctx, tenantID, account.ID).Return(false, nil).Once()
		m.accounts.On("Delete", ctx, tenantID, account.ID).Return(nil).Once()

		require.NoError(t, svc.Delete(ctx, tenantID, account.ID))
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		m.accounts.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound).Once()
		err := svc.Delete(ctx, tenantID, id)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGLAccountService_Tree(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	m := newLedgerMocks()
	svc := NewGLAccountService(m.accounts, m.journal)

	assets := newAccount(t, tenantID, "1", accounting.GLAccountTypeAsset, accounting.GLAccountUsageHeader, nil)
	bank := newAccount(t, tenantID, "1200", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, assets)
	cash := newAccount(t, tenantID, "1100", accounting.GLAccountTypeAsset, accounting.GLAccountUsageDetail, assets)
	income := newAccount(t, tenantID, "4", accounting.GLAccountTypeIncome, accounting.GLAccountUsageHeader, nil)

	m.accounts.On("FindAllForTenant", ctx, tenantID, mock.AnythingOfType("accounting.GLAccountFilter")).
		Return([]accounting.GLAccount{*income, *bank, *assets, *cash}, int64(4), nil).Once()

	roots, err := svc.Tree(ctx, tenantID)

	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "1", roots[0].GLCode)
	assert.Equal(t, "4", roots[1].GLCode)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "1100", roots[0].Children[0].GLCode)
	assert.Equal(t, "1200", roots[0].Children[1].GLCode)
}
