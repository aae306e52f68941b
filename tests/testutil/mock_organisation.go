package testutil

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOfficeRepository is a mock implementation of organisation.OfficeRepository
type MockOfficeRepository struct {
	mock.Mock
}

func (m *MockOfficeRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*organisation.Office, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organisation.Office), args.Error(1)
}

func (m *MockOfficeRepository) FindHeadOffice(ctx context.Context, tenantID uuid.UUID) (*organisation.Office, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organisation.Office), args.Error(1)
}

func (m *MockOfficeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter organisation.OfficeFilter) ([]organisation.Office, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]organisation.Office), args.Get(1).(int64), args.Error(2)
}

func (m *MockOfficeRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, name, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockOfficeRepository) Save(ctx context.Context, office *organisation.Office) error {
	args := m.Called(ctx, office)
	return args.Error(0)
}

func (m *MockOfficeRepository) RewriteHierarchy(ctx context.Context, tenantID uuid.UUID, oldPrefix string, newPrefix string) error {
	args := m.Called(ctx, tenantID, oldPrefix, newPrefix)
	return args.Error(0)
}

// MockStaffRepository is a mock implementation of organisation.StaffRepository
type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*organisation.Staff, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organisation.Staff), args.Error(1)
}

func (m *MockStaffRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter organisation.StaffFilter) ([]organisation.Staff, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]organisation.Staff), args.Get(1).(int64), args.Error(2)
}

func (m *MockStaffRepository) Save(ctx context.Context, staff *organisation.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

// MockTellerRepository is a mock implementation of organisation.TellerRepository
type MockTellerRepository struct {
	mock.Mock
}

func (m *MockTellerRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*organisation.Teller, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organisation.Teller), args.Error(1)
}

func (m *MockTellerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, officeID *uuid.UUID) ([]organisation.Teller, error) {
	args := m.Called(ctx, tenantID, officeID)
	return args.Get(0).([]organisation.Teller), args.Error(1)
}

func (m *MockTellerRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, officeID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, officeID, name, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockTellerRepository) Save(ctx context.Context, teller *organisation.Teller) error {
	args := m.Called(ctx, teller)
	return args.Error(0)
}

func (m *MockTellerRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockTellerRepository) FindCashier(ctx context.Context, tenantID uuid.UUID, tellerID uuid.UUID, cashierID uuid.UUID) (*organisation.Cashier, error) {
	args := m.Called(ctx, tenantID, tellerID, cashierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organisation.Cashier), args.Error(1)
}

func (m *MockTellerRepository) FindCashiers(ctx context.Context, tenantID uuid.UUID, tellerID uuid.UUID) ([]organisation.Cashier, error) {
	args := m.Called(ctx, tenantID, tellerID)
	return args.Get(0).([]organisation.Cashier), args.Error(1)
}

func (m *MockTellerRepository) SaveCashier(ctx context.Context, cashier *organisation.Cashier) error {
	args := m.Called(ctx, cashier)
	return args.Error(0)
}

func (m *MockTellerRepository) DeleteCashier(ctx context.Context, tenantID uuid.UUID, cashierID uuid.UUID) error {
	args := m.Called(ctx, tenantID, cashierID)
	return args.Error(0)
}

func (m *MockTellerRepository) SaveCashierTransaction(ctx context.Context, txn *organisation.CashierTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTellerRepository) FindCashierTransactions(ctx context.Context, tenantID uuid.UUID, cashierID uuid.UUID) ([]organisation.CashierTransaction, error) {
	args := m.Called(ctx, tenantID, cashierID)
	return args.Get(0).([]organisation.CashierTransaction), args.Error(1)
}

func (m *MockTellerRepository) CashierBalances(ctx context.Context, tenantID uuid.UUID, cashierID uuid.UUID) ([]organisation.CashierBalance, error) {
	args := m.Called(ctx, tenantID, cashierID)
	return args.Get(0).([]organisation.CashierBalance), args.Error(1)
}

// MockHolidayRepository is a mock implementation of organisation.HolidayRepository
type MockHolidayRepository struct {
	mock.Mock
}

func (m *MockHolidayRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*organisation.Holiday, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organisation.Holiday), args.Error(1)
}

func (m *MockHolidayRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter organisation.HolidayFilter) ([]organisation.Holiday, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]organisation.Holiday), args.Error(1)
}

func (m *MockHolidayRepository) FindActiveForOffice(ctx context.Context, tenantID uuid.UUID, officeID uuid.UUID, from time.Time) ([]organisation.Holiday, error) {
	args := m.Called(ctx, tenantID, officeID, from)
	return args.Get(0).([]organisation.Holiday), args.Error(1)
}

func (m *MockHolidayRepository) Save(ctx context.Context, holiday *organisation.Holiday) error {
	args := m.Called(ctx, holiday)
	return args.Error(0)
}

// MockWorkingDaysRepository is a mock implementation of organisation.WorkingDaysRepository
type MockWorkingDaysRepository struct {
	mock.Mock
}

func (m *MockWorkingDaysRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*organisation.WorkingDays, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organisation.WorkingDays), args.Error(1)
}

func (m *MockWorkingDaysRepository) Save(ctx context.Context, wd *organisation.WorkingDays) error {
	args := m.Called(ctx, wd)
	return args.Error(0)
}
