package testutil

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGLAccountRepository is a mock implementation of accounting.GLAccountRepository
type MockGLAccountRepository struct {
	mock.Mock
}

func (m *MockGLAccountRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*accounting.GLAccount, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*accounting.GLAccount, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*accounting.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter accounting.GLAccountFilter) ([]accounting.GLAccount, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]accounting.GLAccount), args.Get(1).(int64), args.Error(2)
}

func (m *MockGLAccountRepository) ExistsByGLCode(ctx context.Context, tenantID uuid.UUID, glCode string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, glCode, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockGLAccountRepository) HasChildren(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockGLAccountRepository) Save(ctx context.Context, account *accounting.GLAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockGLAccountRepository) RewriteHierarchy(ctx context.Context, tenantID uuid.UUID, oldPrefix string, newPrefix string) error {
	args := m.Called(ctx, tenantID, oldPrefix, newPrefix)
	return args.Error(0)
}

func (m *MockGLAccountRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockJournalEntryRepository is a mock implementation of accounting.JournalEntryRepository
type MockJournalEntryRepository struct {
	mock.Mock
}

func (m *MockJournalEntryRepository) SaveTransaction(ctx context.Context, txn *accounting.JournalTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) SaveReversal(ctx context.Context, original *accounting.JournalTransaction, reversal *accounting.JournalTransaction) error {
	args := m.Called(ctx, original, reversal)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) FindTransaction(ctx context.Context, tenantID uuid.UUID, transactionID string) (*accounting.JournalTransaction, error) {
	args := m.Called(ctx, tenantID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.JournalTransaction), args.Error(1)
}

func (m *MockJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter accounting.JournalEntryFilter) ([]accounting.JournalEntry, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]accounting.JournalEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockJournalEntryRepository) ExistsForAccount(ctx context.Context, tenantID uuid.UUID, glAccountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, glAccountID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockJournalEntryRepository) TrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time, officeID *uuid.UUID) ([]accounting.TrialBalanceLine, error) {
	args := m.Called(ctx, tenantID, asOf, officeID)
	return args.Get(0).([]accounting.TrialBalanceLine), args.Error(1)
}

// MockAccountingRuleRepository is a mock implementation of accounting.AccountingRuleRepository
type MockAccountingRuleRepository struct {
	mock.Mock
}

func (m *MockAccountingRuleRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*accounting.AccountingRule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.AccountingRule), args.Error(1)
}

func (m *MockAccountingRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]accounting.AccountingRule, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]accounting.AccountingRule), args.Error(1)
}

func (m *MockAccountingRuleRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, name, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockAccountingRuleRepository) Save(ctx context.Context, rule *accounting.AccountingRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockAccountingRuleRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockGLClosureRepository is a mock implementation of accounting.GLClosureRepository
type MockGLClosureRepository struct {
	mock.Mock
}

func (m *MockGLClosureRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*accounting.GLClosure, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.GLClosure), args.Error(1)
}

func (m *MockGLClosureRepository) FindLatestForOffice(ctx context.Context, tenantID uuid.UUID, officeID uuid.UUID) (*accounting.GLClosure, error) {
	args := m.Called(ctx, tenantID, officeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.GLClosure), args.Error(1)
}

func (m *MockGLClosureRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, officeID *uuid.UUID) ([]accounting.GLClosure, error) {
	args := m.Called(ctx, tenantID, officeID)
	return args.Get(0).([]accounting.GLClosure), args.Error(1)
}

func (m *MockGLClosureRepository) Save(ctx context.Context, closure *accounting.GLClosure) error {
	args := m.Called(ctx, closure)
	return args.Error(0)
}

// MockProvisioningRepository is a mock implementation of accounting.ProvisioningRepository
type MockProvisioningRepository struct {
	mock.Mock
}

func (m *MockProvisioningRepository) FindCategory(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*accounting.ProvisioningCategory, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.ProvisioningCategory), args.Error(1)
}

func (m *MockProvisioningRepository) FindCategories(ctx context.Context, tenantID uuid.UUID) ([]accounting.ProvisioningCategory, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]accounting.ProvisioningCategory), args.Error(1)
}

func (m *MockProvisioningRepository) SaveCategory(ctx context.Context, category *accounting.ProvisioningCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockProvisioningRepository) DeleteCategory(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProvisioningRepository) CategoryInUse(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockProvisioningRepository) FindCriteria(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*accounting.ProvisioningCriteria, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.ProvisioningCriteria), args.Error(1)
}

func (m *MockProvisioningRepository) FindAllCriteria(ctx context.Context, tenantID uuid.UUID) ([]accounting.ProvisioningCriteria, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]accounting.ProvisioningCriteria), args.Error(1)
}

func (m *MockProvisioningRepository) SaveCriteria(ctx context.Context, criteria *accounting.ProvisioningCriteria) error {
	args := m.Called(ctx, criteria)
	return args.Error(0)
}

func (m *MockProvisioningRepository) DeleteCriteria(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProvisioningRepository) FindEntry(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*accounting.ProvisioningEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.ProvisioningEntry), args.Error(1)
}

func (m *MockProvisioningRepository) FindEntryByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (*accounting.ProvisioningEntry, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.ProvisioningEntry), args.Error(1)
}

func (m *MockProvisioningRepository) FindEntries(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]accounting.ProvisioningEntry, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]accounting.ProvisioningEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockProvisioningRepository) SaveEntry(ctx context.Context, entry *accounting.ProvisioningEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
